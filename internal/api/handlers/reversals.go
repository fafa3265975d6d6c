package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cristyanmorais/desafio-gac/internal/api/httpx"
	"github.com/cristyanmorais/desafio-gac/internal/api/validate"
	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/reversal"
)

type Reversals struct {
	Workflow *reversal.Workflow
}

func (h Reversals) Request(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransferID  string `json:"transfer_id"`
		RequesterID string `json:"requester_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", "malformed body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("transfer_id", req.TransferID),
		validate.Required("requester_id", req.RequesterID),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", errs.Error(), errs)
		return
	}

	rv, err := h.Workflow.Request(r.Context(), req.TransferID, req.RequesterID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}

func (h Reversals) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Workflow.Approve)
}

func (h Reversals) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Workflow.Reject)
}

func (h Reversals) Get(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Workflow.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}

func (h Reversals) resolve(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, reversalID, approverID string) (models.Reversal, error)) {
	var req struct {
		ApproverID string `json:"approver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", "malformed body", nil)
		return
	}
	if ef := validate.Required("approver_id", req.ApproverID); ef != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", ef.Msg, validate.Errs{*ef})
		return
	}

	rv, err := fn(r.Context(), chi.URLParam(r, "id"), req.ApproverID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rv)
}
