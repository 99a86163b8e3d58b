package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/sagepaypi/internal/api/httpx"
	"github.com/baharkarakas/sagepaypi/internal/services"
)

// CallbackHandler serves the token-addressed routes reached by the cardholder.
// Any lookup failure is a plain 404 so callers learn nothing about which part
// of the URL was wrong.
type CallbackHandler struct {
	Svc         *services.TransactionService
	RedirectURL string // template with {tidb64} and {token}
}

func NewCallbackHandler(svc *services.TransactionService, redirectURL string) *CallbackHandler {
	return &CallbackHandler{Svc: svc, RedirectURL: redirectURL}
}

// Complete3DSecure receives the issuer's form post carrying PaRes.
func (h *CallbackHandler) Complete3DSecure(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.Svc.GetForToken(r.Context(), chi.URLParam(r, "tidb64"), chi.URLParam(r, "token"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.NotFound(w, r)
		return
	}
	pares := r.PostForm.Get("PaRes")
	if pares == "" {
		http.NotFound(w, r)
		return
	}

	tx, err := h.Svc.Complete3DSecure(r.Context(), tx.ID, pares)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	tidb64, token := h.Svc.Tokens(tx)
	http.Redirect(w, r, h.redirectTo(tidb64, token), http.StatusFound)
}

func (h *CallbackHandler) redirectTo(tidb64, token string) string {
	return strings.NewReplacer("{tidb64}", tidb64, "{token}", token).Replace(h.RedirectURL)
}

type statusView struct {
	ID               string  `json:"id"`
	Status           *string `json:"status"`
	StatusCode       *string `json:"status_code"`
	StatusDetail     *string `json:"status_detail"`
	SecureStatus     *string `json:"secure_status"`
	Successful       bool    `json:"successful"`
	Requires3DSecure bool    `json:"requires_3d_secure"`
	Amount           int64   `json:"amount"`
	Currency         string  `json:"currency"`
}

// Status is the token-scoped view shown to the cardholder after the redirect.
func (h *CallbackHandler) Status(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.Svc.GetForToken(r.Context(), chi.URLParam(r, "tidb64"), chi.URLParam(r, "token"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statusView{
		ID:               tx.ID,
		Status:           tx.Status,
		StatusCode:       tx.StatusCode,
		StatusDetail:     tx.StatusDetail,
		SecureStatus:     tx.SecureStatus,
		Successful:       tx.Successful(),
		Requires3DSecure: tx.Requires3DSecure(),
		Amount:           tx.Amount,
		Currency:         tx.Currency,
	})
}
