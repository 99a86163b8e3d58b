// Package events announces persisted transaction changes to other systems.
package events

import (
	"context"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/models"
)

// TransactionEvent is emitted after every recorded lifecycle step.
type TransactionEvent struct {
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Step          string    `json:"step"`
	HTTPStatus    *int      `json:"http_status"`
	StatusCode    *string   `json:"status_code"`
	Status        *string   `json:"status"`
	Instruction   *string   `json:"instruction"`
	At            time.Time `json:"at"`
}

func NewTransactionEvent(tx models.Transaction, resp models.TransactionResponse) TransactionEvent {
	ev := TransactionEvent{
		TransactionID: tx.ID,
		Type:          string(tx.Type),
		Step:          resp.Step,
		HTTPStatus:    resp.StatusCode,
		StatusCode:    tx.StatusCode,
		Status:        tx.Status,
		At:            tx.UpdatedAt,
	}
	if tx.Instruction != nil {
		s := string(*tx.Instruction)
		ev.Instruction = &s
	}
	return ev
}

// Publisher must not block the caller for long and never fails the operation
// that produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev TransactionEvent)
}

type Noop struct{}

func (Noop) Publish(context.Context, TransactionEvent) {}
