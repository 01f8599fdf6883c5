package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error message constants, shared by errors and by tests that match on text.
const (
	ErrMsgNotFound           = "not found"
	ErrMsgOutOfStock         = "out of stock"
	ErrMsgInsufficientStock  = "insufficient stock"
	ErrMsgInsufficientFunds  = "insufficient funds"
	ErrMsgEmptyCart          = "cart is empty"
	ErrMsgInvalidQuantity    = "quantity must be > 0"
	ErrMsgInvalidAmount      = "invalid amount"
	ErrMsgInvalidState       = "invalid checkout state"
	ErrMsgInvariantViolation = "settlement invariant violated"
	ErrMsgAccountExists      = "username already exists"
	ErrMsgEmailTaken         = "email already registered"
	ErrMsgInvalidCredentials = "invalid username, email or password"
	ErrMsgWeakPassword       = "password does not meet requirements"
	ErrMsgInvalidInput       = "invalid input"
	ErrMsgMalformedRecord    = "malformed record"
	ErrMsgStateStackOverflow = "menu state stack overflow"
)

// Sentinel errors. Wrap with fmt.Errorf("%w: %s", model.ErrXxx, details) for context.
var (
	ErrNotFound           = errors.New(ErrMsgNotFound)
	ErrOutOfStock         = errors.New(ErrMsgOutOfStock)
	ErrInsufficientStock  = errors.New(ErrMsgInsufficientStock)
	ErrInsufficientFunds  = errors.New(ErrMsgInsufficientFunds)
	ErrEmptyCart          = errors.New(ErrMsgEmptyCart)
	ErrInvalidQuantity    = errors.New(ErrMsgInvalidQuantity)
	ErrInvalidAmount      = errors.New(ErrMsgInvalidAmount)
	ErrInvalidState       = errors.New(ErrMsgInvalidState)
	ErrInvariantViolation = errors.New(ErrMsgInvariantViolation)
	ErrAccountExists      = errors.New(ErrMsgAccountExists)
	ErrEmailTaken         = errors.New(ErrMsgEmailTaken)
	ErrInvalidCredentials = errors.New(ErrMsgInvalidCredentials)
	ErrWeakPassword       = errors.New(ErrMsgWeakPassword)
	ErrInvalidInput       = errors.New(ErrMsgInvalidInput)
	ErrMalformedRecord    = errors.New(ErrMsgMalformedRecord)
	ErrStateStackOverflow = errors.New(ErrMsgStateStackOverflow)
)

// ParseError reports one malformed inventory record. The record is skipped.
type ParseError struct {
	Index  int
	Record string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d %q: %s", e.Index, e.Record, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformedRecord }

// Shortfall is one item whose requested quantity exceeds what is available.
type Shortfall struct {
	Item      string
	Requested int
	Available int
}

// StockError names every item that failed a stock check.
type StockError struct {
	Kind       error // ErrOutOfStock or ErrInsufficientStock
	Shortfalls []Shortfall
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.Item, s.Requested, s.Available))
	}
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(parts, ", "))
}

func (e *StockError) Unwrap() error { return e.Kind }

// Items returns the names of the offending items.
func (e *StockError) Items() []string {
	out := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		out = append(out, s.Item)
	}
	return out
}
