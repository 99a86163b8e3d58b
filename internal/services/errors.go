package services

import "errors"

// ErrInvalidTransactionStatus matches every precondition failure via errors.Is.
var ErrInvalidTransactionStatus = errors.New("invalid transaction status")

// InvalidTransactionStatus is returned when a lifecycle operation is not legal
// for the transaction's current state. Message is stable and shown to operators.
type InvalidTransactionStatus struct {
	Message string
}

func (e *InvalidTransactionStatus) Error() string { return e.Message }

func (e *InvalidTransactionStatus) Is(target error) bool { return target == ErrInvalidTransactionStatus }

func invalidStatus(msg string) error { return &InvalidTransactionStatus{Message: msg} }

const (
	MsgMissingTransactionID = "transaction is missing a transaction_id"

	MsgReleaseNotDeferred       = "can only release a deferred transaction"
	MsgReleaseHasInstruction    = "cannot release a transaction with an existing instruction"
	MsgReleaseTooLate           = "can only release a transaction that was created within 30 days"
	MsgReleaseAmountTooHigh     = "can only release up to the original amount and no more"
	MsgAbortUnsuccessful        = "cannot abort an unsuccessful transaction"
	MsgAbortNotDeferred         = "can only abort a deferred transaction"
	MsgAbortHasInstruction      = "cannot abort a transaction with an existing instruction"
	MsgAbortTooLate             = "can only abort a transaction that was created within 30 days"
	MsgVoidUnsuccessful         = "cannot void an unsuccessful transaction"
	MsgVoidWrongType            = "can only void a payment or refund"
	MsgVoidHasInstruction       = "cannot void a transaction with an existing instruction"
	MsgVoidNotToday             = "can only void transaction that was created today"
	MsgRepeatUnsuccessful       = "cannot repeat an unsuccessful transaction"
	MsgRepeatNotReusable        = "cannot repeat a transaction without a reusable card identifier"
	MsgRepeatVoid               = "cannot repeat a void transaction"
	MsgRepeatWrongType          = "can only repeat a successful Payment, Repeat or a released Deferred transaction"
	MsgRefundUnsuccessful       = "cannot refund an unsuccessful transaction"
	MsgRefundVoid               = "cannot refund a void transaction"
	MsgRefundDeferredUnreleased = "cannot refund a deferred transaction that is not released"

	MsgCardConnect    = "Cannot connect to Sagepay, please try again later."
	MsgCardUnexpected = "Something went wrong at sagepay, Please check the card details and try again."
)
