package services

import (
	"net/http"
	"time"

	"github.com/baharkarakas/sagepaypi/internal/gateway"
	"github.com/baharkarakas/sagepaypi/internal/models"
)

// The functions in this file hold the transaction rules. Checks decide whether
// an operation is legal; apply functions turn (snapshot, gateway response)
// into (new snapshot, log row) without touching storage.

const instructionWindowDays = 30

func checkTransactionID(tx models.Transaction) error {
	if !tx.HasTransactionID() {
		return invalidStatus(MsgMissingTransactionID)
	}
	return nil
}

// CheckRelease validates a release; amount may be nil to release in full.
func CheckRelease(tx models.Transaction, now time.Time, amount *int64) error {
	if err := checkTransactionID(tx); err != nil {
		return err
	}
	if !(tx.Successful() && tx.Type == models.TxnDeferred) {
		return invalidStatus(MsgReleaseNotDeferred)
	}
	if tx.HasInstruction() {
		return invalidStatus(MsgReleaseHasInstruction)
	}
	if tx.DaysSinceCreated(now) > instructionWindowDays {
		return invalidStatus(MsgReleaseTooLate)
	}
	if amount != nil && *amount > tx.Amount {
		return invalidStatus(MsgReleaseAmountTooHigh)
	}
	return nil
}

func CheckAbort(tx models.Transaction, now time.Time) error {
	if err := checkTransactionID(tx); err != nil {
		return err
	}
	if !tx.Successful() {
		return invalidStatus(MsgAbortUnsuccessful)
	}
	if tx.Type != models.TxnDeferred {
		return invalidStatus(MsgAbortNotDeferred)
	}
	if tx.HasInstruction() {
		return invalidStatus(MsgAbortHasInstruction)
	}
	if tx.DaysSinceCreated(now) > instructionWindowDays {
		return invalidStatus(MsgAbortTooLate)
	}
	return nil
}

func CheckVoid(tx models.Transaction, now time.Time) error {
	if err := checkTransactionID(tx); err != nil {
		return err
	}
	if !tx.Successful() {
		return invalidStatus(MsgVoidUnsuccessful)
	}
	if tx.Type != models.TxnPayment && tx.Type != models.TxnRefund {
		return invalidStatus(MsgVoidWrongType)
	}
	if tx.HasInstruction() {
		return invalidStatus(MsgVoidHasInstruction)
	}
	if tx.DaysSinceCreated(now) > 0 {
		return invalidStatus(MsgVoidNotToday)
	}
	return nil
}

// CheckRepeat validates a repeat of tx charged against card.
func CheckRepeat(tx models.Transaction, card models.CardIdentifier) error {
	if err := checkTransactionID(tx); err != nil {
		return err
	}
	if !tx.Successful() {
		return invalidStatus(MsgRepeatUnsuccessful)
	}
	switch tx.Type {
	case models.TxnPayment, models.TxnRepeat:
	case models.TxnDeferred:
		if !tx.InstructionIs(models.InstructionRelease) {
			return invalidStatus(MsgRepeatWrongType)
		}
	default:
		return invalidStatus(MsgRepeatWrongType)
	}
	if tx.InstructionIs(models.InstructionVoid) {
		return invalidStatus(MsgRepeatVoid)
	}
	if !card.Reusable {
		return invalidStatus(MsgRepeatNotReusable)
	}
	return nil
}

func CheckRefund(tx models.Transaction) error {
	if err := checkTransactionID(tx); err != nil {
		return err
	}
	if !tx.Successful() {
		return invalidStatus(MsgRefundUnsuccessful)
	}
	if tx.InstructionIs(models.InstructionVoid) {
		return invalidStatus(MsgRefundVoid)
	}
	if tx.Type == models.TxnDeferred && !tx.InstructionIs(models.InstructionRelease) {
		return invalidStatus(MsgRefundDeferredUnreleased)
	}
	return nil
}

// Overrides replaces fields of a derived Repeat/Refund transaction. Zero
// values keep the original's value.
type Overrides struct {
	Amount       int64  `json:"amount,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Description  string `json:"description,omitempty"`
	VendorTxCode string `json:"vendor_tx_code,omitempty"`
}

// NewRepeat builds the Repeat row for tx. Type, card and reference always come from tx.
func NewRepeat(tx models.Transaction, o Overrides) models.Transaction {
	out := derive(tx, models.TxnRepeat, o)
	if o.Currency != "" {
		out.Currency = o.Currency
	}
	return out
}

// NewRefund builds the Refund row for tx; the currency cannot be overridden.
func NewRefund(tx models.Transaction, o Overrides) models.Transaction {
	return derive(tx, models.TxnRefund, o)
}

func derive(tx models.Transaction, typ models.TransactionType, o Overrides) models.Transaction {
	ref := tx.ID
	out := models.Transaction{
		Type:                   typ,
		CardIdentifierID:       tx.CardIdentifierID,
		ReferenceTransactionID: &ref,
		VendorTxCode:           o.VendorTxCode,
		Amount:                 tx.Amount,
		Currency:               tx.Currency,
		Description:            tx.Description,
	}
	if o.Amount != 0 {
		out.Amount = o.Amount
	}
	if o.Description != "" {
		out.Description = o.Description
	}
	return out
}

// BuildSubmitRequest maps tx onto the gateway body. card is required for
// Payment/Deferred, ref for Repeat/Refund.
func BuildSubmitRequest(tx models.Transaction, card *models.CardIdentifier, ref *models.Transaction) gateway.TransactionRequest {
	req := gateway.TransactionRequest{
		TransactionType: string(tx.Type),
		VendorTxCode:    tx.VendorTxCode,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Description:     tx.Description,
	}
	if tx.Type.NeedsCard() {
		if card != nil {
			req.PaymentMethod = &gateway.PaymentMethod{Card: gateway.CardPayment{
				MerchantSessionKey: card.MerchantSessionKey,
				CardIdentifier:     card.CardIdentifier,
			}}
			req.CustomerFirstName = card.FirstName
			req.CustomerLastName = card.LastName
			req.BillingAddress = card.BillingAddress()
		}
		return req
	}
	if ref != nil && ref.TransactionID != nil {
		req.ReferenceTransactionID = *ref.TransactionID
	}
	return req
}

func record(tx models.Transaction, step string, res gateway.Response) models.TransactionResponse {
	r := models.TransactionResponse{
		TransactionID: tx.ID,
		Step:          step,
		Data:          res.Raw,
	}
	if res.StatusCode != 0 {
		code := res.StatusCode
		r.StatusCode = &code
	}
	return r
}

// ApplySubmit copies the submission result onto tx. Success and accepted
// responses replace every reported field; rejected requests only carry
// status and statusCode; anything else leaves tx unchanged.
func ApplySubmit(tx models.Transaction, res gateway.Response) (models.Transaction, models.TransactionResponse) {
	switch res.Outcome() {
	case gateway.OutcomeSuccess, gateway.OutcomeAccepted:
		tx.StatusCode = res.String("statusCode")
		tx.Status = res.String("status")
		tx.StatusDetail = res.String("statusDetail")
		tx.TransactionID = res.String("transactionId")
		tx.RetrievalReference = res.String("retrievalReference")
		tx.BankAuthorisationCode = res.String("bankAuthorisationCode")
		tx.PaReq = res.String("paReq")
		tx.AcsURL = res.String("acsUrl")
	case gateway.OutcomeClientErrorStructured, gateway.OutcomeClientErrorOpaque:
		tx.Status = res.String("status")
		tx.StatusCode = res.String("statusCode")
	}
	return tx, record(tx, models.StepSubmit, res)
}

// Apply3DSecure stores pares and, on 201, the authentication status.
func Apply3DSecure(tx models.Transaction, pares string, res gateway.Response) (models.Transaction, models.TransactionResponse) {
	tx.PaRes = &pares
	if res.StatusCode == http.StatusCreated {
		tx.SecureStatus = res.String("status")
	}
	return tx, record(tx, models.Step3DSecure, res)
}

// ApplyOutcome refreshes the reported fields on 200 and otherwise keeps them.
func ApplyOutcome(tx models.Transaction, res gateway.Response) (models.Transaction, models.TransactionResponse) {
	if res.StatusCode == http.StatusOK {
		tx.StatusCode = res.String("statusCode")
		tx.Status = res.String("status")
		tx.StatusDetail = res.String("statusDetail")
		tx.TransactionID = res.String("transactionId")
		tx.RetrievalReference = res.String("retrievalReference")
		tx.BankAuthorisationCode = res.String("bankAuthorisationCode")
	}
	return tx, record(tx, models.StepOutcome, res)
}

// ApplyInstruction records an instruction call. The bool reports whether the
// gateway accepted it (201) and tx changed.
func ApplyInstruction(tx models.Transaction, instruction models.Instruction, res gateway.Response, now time.Time) (models.Transaction, models.TransactionResponse, bool) {
	rec := record(tx, string(instruction), res)
	if res.StatusCode != http.StatusCreated {
		return tx, rec, false
	}

	accepted := instruction
	if s := res.String("instructionType"); s != nil && *s != "" {
		accepted = models.Instruction(*s)
	}
	at := now
	if t, ok := res.Time("date"); ok {
		at = t
	}
	tx.Instruction = &accepted
	tx.InstructionCreatedAt = &at
	return tx, rec, true
}
