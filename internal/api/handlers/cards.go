package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/sagepaypi/internal/api/httpx"
	"github.com/baharkarakas/sagepaypi/internal/api/validate"
	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/services"
)

type CardHandler struct {
	Svc *services.CardService
}

func NewCardHandler(svc *services.CardService) *CardHandler {
	return &CardHandler{Svc: svc}
}

type cardView struct {
	models.CardIdentifier
	Display string `json:"display"`
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CardInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w)
		return
	}
	if err := validate.Struct(in); err != nil {
		writeErr(w, r, err)
		return
	}
	c, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, cardView{CardIdentifier: c, Display: c.DisplayText()})
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cardView{CardIdentifier: c, Display: c.DisplayText()})
}
