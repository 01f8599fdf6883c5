package wallet

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/model"
)

// FundPolicy decides which amounts a wallet may be funded with.
type FundPolicy struct {
	// Options are the fixed top-up amounts offered to the user.
	Options []decimal.Decimal
	// AllowAny accepts any positive amount, not just Options.
	AllowAny bool
}

// DefaultFundPolicy offers the four standard top-ups.
func DefaultFundPolicy() FundPolicy {
	return FundPolicy{Options: []decimal.Decimal{
		decimal.NewFromInt(10000),
		decimal.NewFromInt(20000),
		decimal.NewFromInt(50000),
		decimal.NewFromInt(100000),
	}}
}

// Allows reports whether amount may be funded.
func (p FundPolicy) Allows(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	if p.AllowAny {
		return true
	}
	for _, o := range p.Options {
		if o.Equal(amount) {
			return true
		}
	}
	return false
}

// Wallet holds the signed-in account's balance. The balance only changes
// through Fund, Debit, Refund and Reset.
type Wallet struct {
	balance decimal.Decimal
	policy  FundPolicy
}

// New returns a wallet starting at balance.
func New(balance decimal.Decimal, policy FundPolicy) *Wallet {
	return &Wallet{balance: balance, policy: policy}
}

// Balance returns the current balance.
func (w *Wallet) Balance() decimal.Decimal { return w.balance }

// Policy returns the funding policy.
func (w *Wallet) Policy() FundPolicy { return w.policy }

// Fund adds amount. There is no upper bound.
func (w *Wallet) Fund(amount decimal.Decimal) error {
	if !w.policy.Allows(amount) {
		return fmt.Errorf("%w: %s is not an allowed funding amount", model.ErrInvalidAmount, amount)
	}
	w.balance = w.balance.Add(amount)
	return nil
}

// Debit removes amount, failing when it exceeds the balance.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: cannot debit %s", model.ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(w.balance) {
		return fmt.Errorf("%w: balance %s, needed %s", model.ErrInsufficientFunds, w.balance, amount)
	}
	w.balance = w.balance.Sub(amount)
	return nil
}

// Refund returns a previously debited amount. It bypasses the fund policy.
func (w *Wallet) Refund(amount decimal.Decimal) {
	w.balance = w.balance.Add(amount)
}

// Reset sets the balance to zero and returns what it was.
func (w *Wallet) Reset() decimal.Decimal {
	prev := w.balance
	w.balance = decimal.Zero
	return prev
}

// Restore puts back a balance captured earlier, used when persisting a
// change fails.
func (w *Wallet) Restore(balance decimal.Decimal) {
	w.balance = balance
}
