package models

import (
	"encoding/json"
	"time"
)

const (
	StepSubmit   = "submit_transaction"
	Step3DSecure = "get_3d_secure_status"
	StepOutcome  = "get_transaction_outcome"
	StepRelease  = "release"
	StepAbort    = "abort"
	StepVoid     = "void"
)

// TransactionResponse is one append-only row per gateway call.
type TransactionResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Step          string          `json:"step"`
	StatusCode    *int            `json:"status_code"`
	Data          json.RawMessage `json:"data"`
}
