package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Response is what every gateway call hands back: the HTTP status and the
// decoded JSON body. A zero StatusCode means nothing was received.
type Response struct {
	StatusCode int
	Body       map[string]any
	Raw        json.RawMessage
}

func (r Response) Outcome() Outcome { return Classify(r.StatusCode) }

// String returns body[key] as a string, or nil when absent or null. Numbers
// are kept verbatim since some references come back numeric.
func (r Response) String(key string) *string {
	v, ok := r.Body[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = fmt.Sprint(t)
	}
	return &s
}

// Time parses body[key] as an RFC 3339 timestamp.
func (r Response) Time(key string) (time.Time, bool) {
	s := r.String(key)
	if s == nil {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999Z0700", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type SessionKey struct {
	Key    string
	Expiry time.Time
}

type CardDetails struct {
	CardholderName string `json:"cardholderName"`
	CardNumber     string `json:"cardNumber"`
	ExpiryDate     string `json:"expiryDate"`
	SecurityCode   string `json:"securityCode"`
}

type CardPayment struct {
	MerchantSessionKey string `json:"merchantSessionKey"`
	CardIdentifier     string `json:"cardIdentifier"`
}

type PaymentMethod struct {
	Card CardPayment `json:"card"`
}

// TransactionRequest is the body for POST /transactions. Card fields are only
// set for Payment/Deferred, the reference only for Repeat/Refund.
type TransactionRequest struct {
	TransactionType        string            `json:"transactionType"`
	VendorTxCode           string            `json:"vendorTxCode"`
	Amount                 int64             `json:"amount"`
	Currency               string            `json:"currency"`
	Description            string            `json:"description"`
	PaymentMethod          *PaymentMethod    `json:"paymentMethod,omitempty"`
	CustomerFirstName      string            `json:"customerFirstName,omitempty"`
	CustomerLastName       string            `json:"customerLastName,omitempty"`
	BillingAddress         map[string]string `json:"billingAddress,omitempty"`
	ReferenceTransactionID string            `json:"referenceTransactionId,omitempty"`
}

type InstructionRequest struct {
	InstructionType string `json:"instructionType"`
	Amount          *int64 `json:"amount,omitempty"`
}

type SecureRequest struct {
	PaRes string `json:"paRes"`
}

// FieldError is one entry of a 422 errors list.
type FieldError struct {
	Property      string `json:"property"`
	ClientMessage string `json:"clientMessage"`
	Code          any    `json:"code,omitempty"`
}

// Errors extracts the structured errors list from a rejected request.
func (r Response) Errors() []FieldError {
	var body struct {
		Errors []FieldError `json:"errors"`
	}
	if len(r.Raw) == 0 || json.Unmarshal(r.Raw, &body) != nil {
		return nil
	}
	return body.Errors
}
