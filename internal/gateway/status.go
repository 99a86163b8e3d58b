package gateway

import "net/http"

// Outcome groups the HTTP status codes the gateway documents.
type Outcome int

const (
	// OutcomeUnavailable covers transport failures where no status was received.
	OutcomeUnavailable Outcome = iota
	OutcomeSuccess
	OutcomeAccepted
	OutcomeClientErrorStructured
	OutcomeClientErrorOpaque
	OutcomeServerError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeClientErrorStructured:
		return "client_error_structured"
	case OutcomeClientErrorOpaque:
		return "client_error_opaque"
	case OutcomeServerError:
		return "server_error"
	}
	return "unavailable"
}

// Classify maps a gateway status code onto an Outcome.
//
//	200, 201, 204  success
//	202            accepted, processing not completed
//	400, 422       request rejected with an errors body
//	401..408       request rejected without usable detail
//	5xx            issue at the gateway
func Classify(status int) Outcome {
	switch {
	case status == http.StatusOK, status == http.StatusCreated, status == http.StatusNoContent:
		return OutcomeSuccess
	case status == http.StatusAccepted:
		return OutcomeAccepted
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return OutcomeClientErrorStructured
	case status >= 400 && status < 500:
		return OutcomeClientErrorOpaque
	case status >= 500:
		return OutcomeServerError
	}
	return OutcomeUnavailable
}
