package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the outcome of a settled checkout.
type Receipt struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	Lines           []LineView      `json:"lines"`
	Total           decimal.Decimal `json:"total"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	SettledAt       time.Time       `json:"settled_at"`
}

// Units is the number of items bought across all lines.
func (r Receipt) Units() int {
	n := 0
	for _, l := range r.Lines {
		n = AddQuantities(n, l.Quantity)
	}
	return n
}
