package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/sagepaypi/internal/api/httpx"
	"github.com/baharkarakas/sagepaypi/internal/api/validate"
	"github.com/baharkarakas/sagepaypi/internal/models"
	"github.com/baharkarakas/sagepaypi/internal/repository"
	"github.com/baharkarakas/sagepaypi/internal/services"
)

// writeErr maps service errors onto HTTP responses.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid *services.InvalidTransactionStatus
		fields  models.FieldErrors
		verrs   validate.Errs
	)
	switch {
	case errors.As(err, &invalid):
		httpx.WriteError(w, http.StatusConflict, "invalid_transaction_status", invalid.Message, nil)
	case errors.As(err, &fields):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_error", "validation failed", fields)
	case errors.As(err, &verrs):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "validation_error", "validation failed", verrs)
	case errors.Is(err, repository.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
	default:
		slog.Error("request failed", "err", err, "path", r.URL.Path)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

// decode reads an optional JSON body into dst; an empty body leaves dst as is.
func decode(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func badRequest(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
}
