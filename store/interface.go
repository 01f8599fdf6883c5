package store

import (
	"context"

	"storefront/model"
)

// Store persists accounts and the sales ledger. Inventory is read-only and
// loaded separately (see LoadWarehouseInventory).
//
// Lookups return model.ErrNotFound for a missing account. CreateAccount and
// UpdateAccount return model.ErrAccountExists or model.ErrEmailTaken when a
// write would break username or email uniqueness.
type Store interface {
	GetAccount(ctx context.Context, username string) (model.Account, error)
	// FindAccount matches login against username first, then email.
	FindAccount(ctx context.Context, login string) (model.Account, error)
	CreateAccount(ctx context.Context, acct model.Account) error
	// UpdateAccount replaces the account currently stored under username.
	// acct.Username may differ, which renames the account.
	UpdateAccount(ctx context.Context, username string, acct model.Account) error
	DeleteAccount(ctx context.Context, username string) error

	RecordSale(ctx context.Context, receipt model.Receipt) error

	Close() error
}
