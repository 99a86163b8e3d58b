package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/sagepaypi/internal/api/httpx"
	"github.com/baharkarakas/sagepaypi/internal/api/validate"
	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/services"
)

type TransactionHandler struct {
	Svc *services.TransactionService
}

func NewTransactionHandler(svc *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{Svc: svc}
}

type secureView struct {
	AcsURL  string `json:"acs_url"`
	PaReq   string `json:"pareq"`
	TermURL string `json:"term_url"`
}

type transactionView struct {
	models.Transaction
	AmountDisplay    string      `json:"amount_display"`
	Successful       bool        `json:"successful"`
	Requires3DSecure bool        `json:"requires_3d_secure"`
	Secure           *secureView `json:"secure,omitempty"`
}

// TermURL is where the issuer posts the cardholder back after 3-D Secure.
func TermURL(tidb64, token string) string {
	return "/transactions/" + tidb64 + "/" + token + "/3d-secure/complete/"
}

func (h *TransactionHandler) view(tx models.Transaction) transactionView {
	v := transactionView{
		Transaction:      tx,
		AmountDisplay:    models.FormatAmount(tx.Amount, tx.Currency),
		Successful:       tx.Successful(),
		Requires3DSecure: tx.Requires3DSecure(),
	}
	if v.Requires3DSecure && tx.AcsURL != nil && tx.PaReq != nil {
		tidb64, token := h.Svc.Tokens(tx)
		v.Secure = &secureView{AcsURL: *tx.AcsURL, PaReq: *tx.PaReq, TermURL: TermURL(tidb64, token)}
	}
	return v
}

func (h *TransactionHandler) write(w http.ResponseWriter, r *http.Request, status int, tx models.Transaction, err error) {
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, h.view(tx))
}

type createTxReq struct {
	Type                 string `json:"type" validate:"required,oneof=Payment Deferred Repeat Refund"`
	CardIdentifier       string `json:"card_identifier"`
	ReferenceTransaction string `json:"reference_transaction"`
	VendorTxCode         string `json:"vendor_tx_code" validate:"max=40"`
	Amount               int64  `json:"amount" validate:"gte=1"`
	Currency             string `json:"currency" validate:"required,currency"`
	Description          string `json:"description" validate:"required,max=100"`
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTxReq
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, r, err)
		return
	}
	tx := models.Transaction{
		Type:         models.TransactionType(req.Type),
		VendorTxCode: req.VendorTxCode,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Description:  req.Description,
	}
	if req.CardIdentifier != "" {
		tx.CardIdentifierID = &req.CardIdentifier
	}
	if req.ReferenceTransaction != "" {
		tx.ReferenceTransactionID = &req.ReferenceTransaction
	}
	tx, err := h.Svc.Create(r.Context(), tx)
	h.write(w, r, http.StatusCreated, tx, err)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	txs, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, h.view(tx))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	h.write(w, r, http.StatusOK, tx, err)
}

func (h *TransactionHandler) Responses(w http.ResponseWriter, r *http.Request) {
	log, err := h.Svc.Responses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, log)
}

func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Svc.Submit(r.Context(), chi.URLParam(r, "id"))
	h.write(w, r, http.StatusOK, tx, err)
}

func (h *TransactionHandler) Outcome(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Svc.Outcome(r.Context(), chi.URLParam(r, "id"))
	h.write(w, r, http.StatusOK, tx, err)
}

type releaseReq struct {
	Amount *int64 `json:"amount"`
}

func (h *TransactionHandler) Release(w http.ResponseWriter, r *http.Request) {
	var req releaseReq
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	if req.Amount != nil {
		if err := validate.Collect(validate.MinInt("amount", *req.Amount, 1)); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	tx, err := h.Svc.Release(r.Context(), chi.URLParam(r, "id"), req.Amount)
	h.write(w, r, http.StatusOK, tx, err)
}

func (h *TransactionHandler) Abort(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Svc.Abort(r.Context(), chi.URLParam(r, "id"))
	h.write(w, r, http.StatusOK, tx, err)
}

func (h *TransactionHandler) Void(w http.ResponseWriter, r *http.Request) {
	tx, err := h.Svc.Void(r.Context(), chi.URLParam(r, "id"))
	h.write(w, r, http.StatusOK, tx, err)
}

type overridesReq struct {
	Amount       int64  `json:"amount" validate:"gte=0"`
	Currency     string `json:"currency" validate:"omitempty,currency"`
	Description  string `json:"description" validate:"max=100"`
	VendorTxCode string `json:"vendor_tx_code" validate:"max=40"`
}

func (req overridesReq) overrides() services.Overrides {
	return services.Overrides{
		Amount:       req.Amount,
		Currency:     req.Currency,
		Description:  req.Description,
		VendorTxCode: req.VendorTxCode,
	}
}

func (h *TransactionHandler) Repeat(w http.ResponseWriter, r *http.Request) {
	h.derived(w, r, h.Svc.Repeat)
}

func (h *TransactionHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.derived(w, r, h.Svc.Refund)
}

type deriveFunc = func(ctx context.Context, id string, o services.Overrides) (models.Transaction, error)

func (h *TransactionHandler) derived(w http.ResponseWriter, r *http.Request, fn deriveFunc) {
	var req overridesReq
	if err := decode(r, &req); err != nil {
		badRequest(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErr(w, r, err)
		return
	}
	tx, err := fn(r.Context(), chi.URLParam(r, "id"), req.overrides())
	h.write(w, r, http.StatusCreated, tx, err)
}
