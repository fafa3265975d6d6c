package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cristyanmorais/desafio-gac/internal/api/httpx"
	"github.com/cristyanmorais/desafio-gac/internal/api/validate"
	"github.com/cristyanmorais/desafio-gac/internal/ledger"
)

// maxPageSize caps list page sizes, matching the account listing cap.
const maxPageSize = 100

type Transfers struct {
	Engine *ledger.Engine
}

func (h Transfers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID   string `json:"sender_id"`
		ReceiverID string `json:"receiver_id"`
		Amount     string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", "malformed body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("sender_id", req.SenderID),
		validate.Required("receiver_id", req.ReceiverID),
		validate.Required("amount", req.Amount),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", errs.Error(), errs)
		return
	}

	tr, err := h.Engine.Transfer(r.Context(), req.SenderID, req.ReceiverID, req.Amount)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tr)
}

func (h Transfers) Get(w http.ResponseWriter, r *http.Request) {
	tr, err := h.Engine.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tr)
}

func (h Transfers) List(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", "account_id required", nil)
		return
	}

	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	trs, err := h.Engine.ListByAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, trs)
}
