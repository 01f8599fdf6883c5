package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/cart"
	"storefront/checkout"
	"storefront/logger"
	"storefront/model"
	"storefront/wallet"
)

// Session is one signed-in user: their account, wallet and cart. Every
// change to the account is written through to the store.
type Session struct {
	id      string
	svc     *Service
	account model.Account
	wallet  *wallet.Wallet
	cart    *cart.Cart
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Context attaches the session id to ctx for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	return logger.WithSessionID(ctx, s.id)
}

func (s *Session) Username() string         { return s.account.Username }
func (s *Session) Balance() decimal.Decimal { return s.wallet.Balance() }

// ---- wallet ----

// Fund adds amount to the balance and persists it. The balance is restored
// if the store write fails.
func (s *Session) Fund(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	before := s.wallet.Balance()
	if err := s.wallet.Fund(amount); err != nil {
		return before, err
	}
	if err := s.saveBalance(ctx); err != nil {
		s.wallet.Restore(before)
		return before, err
	}
	logger.FromContext(ctx).Info("Wallet funded", "username", s.Username(), "amount", amount.String())
	return s.wallet.Balance(), nil
}

// ResetBalance sets the balance to zero after checking the password.
func (s *Session) ResetBalance(ctx context.Context, password string) (decimal.Decimal, error) {
	if err := s.verify(password); err != nil {
		return s.wallet.Balance(), err
	}
	previous := s.wallet.Reset()
	if err := s.saveBalance(ctx); err != nil {
		s.wallet.Restore(previous)
		return previous, err
	}
	logger.FromContext(ctx).Info("Balance reset", "username", s.Username(), "previous", previous.String())
	return previous, nil
}

func (s *Session) saveBalance(ctx context.Context) error {
	acct := s.account
	acct.Balance = s.wallet.Balance()
	if err := s.svc.store.UpdateAccount(ctx, s.account.Username, acct); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	s.account = acct
	return nil
}

// ---- catalog and cart ----

// Search returns the catalog items matching every term of query.
func (s *Session) Search(query string) []model.InventoryItem {
	return slices.Collect(s.svc.catalog.Search(query))
}

// CatalogItems lists the whole catalog.
func (s *Session) CatalogItems() []model.InventoryItem {
	return slices.Collect(s.svc.catalog.Items())
}

func (s *Session) AddToCart(itemName string, quantity int) error {
	return s.cart.Add(itemName, quantity)
}

func (s *Session) RemoveFromCart(itemName string) error {
	return s.cart.Remove(itemName)
}

func (s *Session) RemoveQuantity(itemName string, quantity int) error {
	return s.cart.RemoveQuantity(itemName, quantity)
}

func (s *Session) ClearCart() { s.cart.Clear() }

func (s *Session) ViewCart() ([]model.LineView, error) { return s.cart.View() }

func (s *Session) CartTotal() (decimal.Decimal, error) { return s.cart.Total() }

func (s *Session) CartLines() []model.CartLine { return s.cart.Lines() }

// BeginCheckout opens a checkout over the session cart. Settlement persists
// the new balance and records the sale.
func (s *Session) BeginCheckout() (*checkout.Checkout, error) {
	return checkout.Begin(s.cart, s.wallet, s.svc.catalog,
		checkout.WithUsername(s.account.Username),
		checkout.WithOnSettled(s.recordSettlement),
	)
}

func (s *Session) recordSettlement(ctx context.Context, receipt model.Receipt) error {
	balanceErr := s.saveBalance(ctx)
	var saleErr error
	if err := s.svc.store.RecordSale(ctx, receipt); err != nil {
		saleErr = fmt.Errorf("record sale: %w", err)
	}
	return errors.Join(balanceErr, saleErr)
}

// ---- account ----

// VerifyPassword reports whether password is the account's password.
func (s *Session) VerifyPassword(password string) bool {
	return checkPassword(s.account.PasswordHash, password)
}

func (s *Session) verify(password string) error {
	if !s.VerifyPassword(password) {
		return model.ErrInvalidCredentials
	}
	return nil
}

// Details returns the account after checking the password.
func (s *Session) Details(password string) (AccountDTO, error) {
	if err := s.verify(password); err != nil {
		return AccountDTO{}, err
	}
	acct := s.account
	acct.Balance = s.wallet.Balance()
	return toAccountDTO(acct), nil
}

func (s *Session) ChangeUsername(ctx context.Context, password, newUsername string) error {
	if err := s.verify(password); err != nil {
		return err
	}
	newUsername = strings.TrimSpace(newUsername)
	if err := s.svc.validator.ValidateUsername(newUsername); err != nil {
		return err
	}
	acct := s.account
	acct.Username = newUsername
	if err := s.update(ctx, acct); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Username changed", "username", newUsername)
	return nil
}

func (s *Session) ChangeEmail(ctx context.Context, password, newEmail string) error {
	if err := s.verify(password); err != nil {
		return err
	}
	newEmail = strings.TrimSpace(newEmail)
	if err := s.svc.validator.ValidateEmail(newEmail); err != nil {
		return err
	}
	acct := s.account
	acct.Email = newEmail
	if err := s.update(ctx, acct); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Email changed", "username", s.Username())
	return nil
}

func (s *Session) ChangePassword(ctx context.Context, current, newPassword string) error {
	if err := s.verify(current); err != nil {
		return err
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword, s.svc.hashCost)
	if err != nil {
		return err
	}
	acct := s.account
	acct.PasswordHash = hash
	if err := s.update(ctx, acct); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Password changed", "username", s.Username())
	return nil
}

// DeleteAccount removes the account. The session must not be used after.
func (s *Session) DeleteAccount(ctx context.Context, password string) error {
	if err := s.verify(password); err != nil {
		return err
	}
	if err := s.svc.store.DeleteAccount(ctx, s.account.Username); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.cart.Clear()
	logger.FromContext(ctx).Info("Account deleted", "username", s.Username())
	return nil
}

func (s *Session) update(ctx context.Context, acct model.Account) error {
	acct.Balance = s.wallet.Balance()
	if err := s.svc.store.UpdateAccount(ctx, s.account.Username, acct); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.account = acct
	return nil
}
