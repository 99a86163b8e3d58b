package middleware

import "context"

type operatorKey struct{}

// OperatorCtx identifies the authenticated back-office operator.
type OperatorCtx struct {
	Email string
	Role  string
}

func WithOperator(ctx context.Context, o OperatorCtx) context.Context {
	return context.WithValue(ctx, operatorKey{}, o)
}

func OperatorFrom(ctx context.Context) (OperatorCtx, bool) {
	o, ok := ctx.Value(operatorKey{}).(OperatorCtx)
	return o, ok
}
