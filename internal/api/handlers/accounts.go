package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cristyanmorais/desafio-gac/internal/api/httpx"
	"github.com/cristyanmorais/desafio-gac/internal/api/validate"
	"github.com/cristyanmorais/desafio-gac/internal/directory"
	"github.com/cristyanmorais/desafio-gac/internal/models"
	"github.com/cristyanmorais/desafio-gac/internal/money"
)

type Accounts struct {
	Dir directory.Directory
}

func (h Accounts) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", "malformed body", nil)
		return
	}
	if errs := validate.Collect(
		validate.Required("name", req.Name),
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	); len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", errs.Error(), errs)
		return
	}
	if err := (&models.Account{Name: req.Name, Email: req.Email}).Validate(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
		return
	}

	a, err := h.Dir.Create(r.Context(), req.Name, req.Email, req.Password, money.FromCents(0))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h Accounts) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.Dir.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h Accounts) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Dir.List(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accounts)
}
