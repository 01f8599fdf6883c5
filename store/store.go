package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"storefront/logger"
	"storefront/model"
)

//go:embed migrations.sql
var migrationSQL string

const (
	pqUniqueViolation = "unique_violation"
	emailConstraint   = "accounts_email_key"
)

// PostgresStore is a Store backed by Postgres and has in-process locks
type PostgresStore struct {
	DB *sql.DB

	// per-account mutexes so a rename and a balance write for the same
	// account are not interleaved. Keys are username -> *sync.Mutex
	locks sync.Map
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	DB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := DB.PingContext(ctx); err != nil {
		_ = DB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{DB: DB}, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, migrationSQL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.FromContext(ctx).Info("Database migrations executed")
	return nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// helper: acquire per-account lock (process-local). Returns unlock func.
func (s *PostgresStore) lockForUser(username string) func() {
	if v, ok := s.locks.Load(username); ok {
		m := v.(*sync.Mutex)
		m.Lock()
		return m.Unlock
	}
	actual, _ := s.locks.LoadOrStore(username, &sync.Mutex{})
	m := actual.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *PostgresStore) GetAccount(ctx context.Context, username string) (model.Account, error) {
	return s.scanAccount(s.DB.QueryRowContext(ctx,
		`SELECT username, email, password_hash, balance FROM accounts WHERE username = $1`, username), username)
}

func (s *PostgresStore) FindAccount(ctx context.Context, login string) (model.Account, error) {
	return s.scanAccount(s.DB.QueryRowContext(ctx, `
		SELECT username, email, password_hash, balance FROM accounts
		WHERE username = $1 OR email = $1
		ORDER BY (username = $1) DESC
		LIMIT 1
	`, login), login)
}

func (s *PostgresStore) scanAccount(row *sql.Row, key string) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.Username, &a.Email, &a.PasswordHash, &a.Balance)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("%w: account %q", model.ErrNotFound, key)
	}
	if err != nil {
		return model.Account{}, err
	}
	return a, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, acct model.Account) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO accounts (username, email, password_hash, balance) VALUES ($1, $2, $3, $4)`,
		acct.Username, acct.Email, acct.PasswordHash, acct.Balance.StringFixed(2),
	)
	return uniquenessError(err, acct)
}

func (s *PostgresStore) UpdateAccount(ctx context.Context, username string, acct model.Account) error {
	unlock := s.lockForUser(username)
	defer unlock()

	res, err := s.DB.ExecContext(ctx, `
		UPDATE accounts SET username = $1, email = $2, password_hash = $3, balance = $4
		WHERE username = $5
	`, acct.Username, acct.Email, acct.PasswordHash, acct.Balance.StringFixed(2), username)
	if err != nil {
		return uniquenessError(err, acct)
	}
	ra, _ := res.RowsAffected()
	if ra == 0 {
		return fmt.Errorf("%w: account %q", model.ErrNotFound, username)
	}
	return nil
}

func (s *PostgresStore) DeleteAccount(ctx context.Context, username string) error {
	unlock := s.lockForUser(username)
	defer unlock()

	res, err := s.DB.ExecContext(ctx, `DELETE FROM accounts WHERE username = $1`, username)
	if err != nil {
		return err
	}
	ra, _ := res.RowsAffected()
	if ra == 0 {
		return fmt.Errorf("%w: account %q", model.ErrNotFound, username)
	}
	s.locks.Delete(username)
	return nil
}

// RecordSale writes the sale header and its lines in one transaction.
func (s *PostgresStore) RecordSale(ctx context.Context, receipt model.Receipt) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// ensure rollback on early return
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sales (id, username, total, previous_balance, new_balance, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, receipt.ID, receipt.Username, receipt.Total.StringFixed(2),
		receipt.PreviousBalance.StringFixed(2), receipt.NewBalance.StringFixed(2), receipt.SettledAt); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sale_items (sale_id, item_name, quantity, unit_price, line_total) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range receipt.Lines {
		if _, err := stmt.ExecContext(ctx, receipt.ID, l.Item.Name, l.Quantity,
			l.Item.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2)); err != nil {
			return fmt.Errorf("insert sale item %q: %w", l.Item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// uniquenessError maps a Postgres unique violation to the matching sentinel.
func uniquenessError(err error, acct model.Account) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != pqUniqueViolation {
		return err
	}
	if pqErr.Constraint == emailConstraint {
		return fmt.Errorf("%w: %q", model.ErrEmailTaken, acct.Email)
	}
	return fmt.Errorf("%w: %q", model.ErrAccountExists, acct.Username)
}
