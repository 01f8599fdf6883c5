package model

import "github.com/shopspring/decimal"

// Account is a stored user. Username and Email are each unique.
type Account struct {
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
}
