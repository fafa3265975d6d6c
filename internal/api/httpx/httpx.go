package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteDomainError maps the core's sentinel errors to stable codes and
// status codes. Unknown errors become a 500 with a generic body.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrTransferNotFound),
		errors.Is(err, models.ErrReversalNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, models.ErrSelfTransfer),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, money.ErrMalformedAmount):
		WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, models.ErrInsufficientFunds):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error(), nil)
	case errors.Is(err, models.ErrUnauthorized):
		WriteError(w, http.StatusForbidden, "unauthorized", err.Error(), nil)
	case errors.Is(err, models.ErrAlreadyReversed),
		errors.Is(err, models.ErrAlreadyResolved),
		errors.Is(err, models.ErrActiveReversal),
		errors.Is(err, models.ErrEmailTaken):
		WriteError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, models.ErrContention):
		WriteError(w, http.StatusConflict, "contention", err.Error(), nil)
	case errors.Is(err, money.ErrOverflow):
		WriteError(w, http.StatusUnprocessableEntity, "overflow", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
