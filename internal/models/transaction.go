package models

import (
	"time"
)

type TransactionType string

const (
	TxnPayment  TransactionType = "Payment"
	TxnDeferred TransactionType = "Deferred"
	TxnRepeat   TransactionType = "Repeat"
	TxnRefund   TransactionType = "Refund"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxnPayment, TxnDeferred, TxnRepeat, TxnRefund:
		return true
	}
	return false
}

// NeedsCard reports whether the type is charged against a card identifier
// rather than a reference transaction.
func (t TransactionType) NeedsCard() bool {
	return t == TxnPayment || t == TxnDeferred
}

type Instruction string

const (
	InstructionRelease Instruction = "release"
	InstructionAbort   Instruction = "abort"
	InstructionVoid    Instruction = "void"
)

const (
	StatusCodeOK       = "0000"
	StatusCode3DSecure = "2007"
)

// Transaction mirrors one payment on the gateway. Nullable gateway fields are
// pointers; ReferenceTransactionID is a plain id so Repeat/Refund chains are
// never loaded eagerly.
type Transaction struct {
	ID                     string          `json:"id"`
	Type                   TransactionType `json:"type"`
	CardIdentifierID       *string         `json:"card_identifier_id,omitempty"`
	ReferenceTransactionID *string         `json:"reference_transaction_id,omitempty"`
	VendorTxCode           string          `json:"vendor_tx_code"`
	Amount                 int64           `json:"amount"`
	Currency               string          `json:"currency"`
	Description            string          `json:"description"`

	StatusCode            *string `json:"status_code"`
	Status                *string `json:"status"`
	StatusDetail          *string `json:"status_detail"`
	TransactionID         *string `json:"transaction_id"`
	RetrievalReference    *string `json:"retrieval_reference"`
	BankAuthorisationCode *string `json:"bank_authorisation_code"`
	AcsURL                *string `json:"acs_url"`
	PaReq                 *string `json:"pareq"`
	PaRes                 *string `json:"pares,omitempty"`
	SecureStatus          *string `json:"secure_status"`

	Instruction          *Instruction `json:"instruction"`
	InstructionCreatedAt *time.Time   `json:"instruction_created_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Transaction) Successful() bool {
	return t.StatusCode != nil && *t.StatusCode == StatusCodeOK
}

func (t Transaction) Requires3DSecure() bool {
	return t.StatusCode != nil && *t.StatusCode == StatusCode3DSecure
}

func (t Transaction) HasTransactionID() bool {
	return t.TransactionID != nil && *t.TransactionID != ""
}

func (t Transaction) HasInstruction() bool {
	return t.Instruction != nil && *t.Instruction != ""
}

func (t Transaction) InstructionIs(i Instruction) bool {
	return t.Instruction != nil && *t.Instruction == i
}

// DaysSinceCreated counts whole elapsed days, rounding partial days down.
func (t Transaction) DaysSinceCreated(now time.Time) int {
	const day = 24 * time.Hour
	d := now.UTC().Sub(t.CreatedAt.UTC())
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// Validate checks the fields the gateway needs before a row may be stored.
func (t Transaction) Validate() error {
	errs := FieldErrors{}

	if !t.Type.Valid() {
		errs["type"] = "Select a valid choice."
	}
	if !ValidCurrency(t.Currency) {
		errs["currency"] = "Requires a valid currency."
	}
	if t.Type.NeedsCard() && (t.CardIdentifierID == nil || *t.CardIdentifierID == "") {
		errs["card_identifier"] = "This field is required."
	}
	if t.Type == TxnRepeat && t.ReferenceTransactionID == nil {
		errs["reference_transaction"] = `Required for a "Repeat" transaction.`
	}
	if t.Type == TxnRefund && t.ReferenceTransactionID == nil {
		errs["reference_transaction"] = `Required for a "Refund" transaction.`
	}
	if len(t.VendorTxCode) > 40 {
		errs["vendor_tx_code"] = "Ensure this value has at most 40 characters."
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Str is a small helper for filling nullable string fields.
func Str(s string) *string { return &s }
