package models

import (
	"errors"
	"strings"
	"time"

	"github.com/cristyanmorais/desafio-gac/internal/money"
)

type Account struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Balance      money.Money `json:"balance"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (a *Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) < 3 {
		return errors.New("name too short")
	}
	if !strings.Contains(a.Email, "@") {
		return errors.New("invalid email")
	}
	return nil
}
