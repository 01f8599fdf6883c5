package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/logger"
	"storefront/model"
)

const (
	fieldSep = ", "
	lineSep  = "|"
)

// FileStore keeps accounts in a comma separated text file, one account per
// line, and appends settled sales to a ledger file. The accounts file is
// read on every call and rewritten whole through a temp file and rename.
type FileStore struct {
	AccountsPath string
	SalesPath    string
}

func NewFileStore(accountsPath, salesPath string) (*FileStore, error) {
	for _, p := range []string{accountsPath, salesPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &FileStore{AccountsPath: accountsPath, SalesPath: salesPath}, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) GetAccount(ctx context.Context, username string) (model.Account, error) {
	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return model.Account{}, err
	}
	for _, a := range accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("%w: account %q", model.ErrNotFound, username)
}

func (s *FileStore) FindAccount(ctx context.Context, login string) (model.Account, error) {
	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return model.Account{}, err
	}
	for _, a := range accounts {
		if a.Username == login {
			return a, nil
		}
	}
	for _, a := range accounts {
		if a.Email == login {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("%w: account %q", model.ErrNotFound, login)
}

func (s *FileStore) CreateAccount(ctx context.Context, acct model.Account) error {
	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return err
	}
	if err := checkUnique(accounts, "", acct); err != nil {
		return err
	}
	return s.writeAccounts(append(accounts, acct))
}

func (s *FileStore) UpdateAccount(ctx context.Context, username string, acct model.Account) error {
	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(accounts, username)
	if idx < 0 {
		return fmt.Errorf("%w: account %q", model.ErrNotFound, username)
	}
	if err := checkUnique(accounts, username, acct); err != nil {
		return err
	}
	accounts[idx] = acct
	return s.writeAccounts(accounts)
}

func (s *FileStore) DeleteAccount(ctx context.Context, username string) error {
	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(accounts, username)
	if idx < 0 {
		return fmt.Errorf("%w: account %q", model.ErrNotFound, username)
	}
	return s.writeAccounts(append(accounts[:idx], accounts[idx+1:]...))
}

// RecordSale appends one line per receipt:
// id, username, total, RFC3339 time, item×qty|item×qty
func (s *FileStore) RecordSale(_ context.Context, receipt model.Receipt) error {
	items := make([]string, 0, len(receipt.Lines))
	for _, l := range receipt.Lines {
		items = append(items, fmt.Sprintf("%s×%d", l.Item.Name, l.Quantity))
	}
	line := strings.Join([]string{
		receipt.ID,
		receipt.Username,
		model.FormatBalance(receipt.Total),
		receipt.SettledAt.UTC().Format(time.RFC3339),
		strings.Join(items, lineSep),
	}, fieldSep) + "\n"

	f, err := os.OpenFile(s.SalesPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sales ledger: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append sale: %w", err)
	}
	return f.Close()
}

func (s *FileStore) readAccounts(ctx context.Context) ([]model.Account, error) {
	f, err := os.Open(s.AccountsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open accounts: %w", err)
	}
	defer f.Close()

	var accounts []model.Account
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		acct, err := parseAccount(line)
		if err != nil {
			logger.FromContext(ctx).Warn("Skipping malformed account record", "file", s.AccountsPath, "line", lineNo, "error", err)
			continue
		}
		accounts = append(accounts, acct)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	return accounts, nil
}

func (s *FileStore) writeAccounts(accounts []model.Account) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.AccountsPath), ".accounts-*")
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, a := range accounts {
		fmt.Fprintln(w, formatAccount(a))
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write accounts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.AccountsPath); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}
	return nil
}

func formatAccount(a model.Account) string {
	return strings.Join([]string{a.Username, a.Email, a.PasswordHash, model.FormatBalance(a.Balance)}, fieldSep)
}

func parseAccount(line string) (model.Account, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return model.Account{}, fmt.Errorf("%w: want 4 fields, got %d", model.ErrMalformedRecord, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" {
		return model.Account{}, fmt.Errorf("%w: empty username", model.ErrMalformedRecord)
	}
	balance, err := decimal.NewFromString(parts[3])
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: balance %q", model.ErrMalformedRecord, parts[3])
	}
	return model.Account{Username: parts[0], Email: parts[1], PasswordHash: parts[2], Balance: balance}, nil
}

func indexOf(accounts []model.Account, username string) int {
	for i, a := range accounts {
		if a.Username == username {
			return i
		}
	}
	return -1
}

// checkUnique rejects acct if another account, other than the one stored
// under self, already uses its username or email.
func checkUnique(accounts []model.Account, self string, acct model.Account) error {
	for _, a := range accounts {
		if a.Username == self && self != "" {
			continue
		}
		if a.Username == acct.Username {
			return fmt.Errorf("%w: %q", model.ErrAccountExists, acct.Username)
		}
		if strings.EqualFold(a.Email, acct.Email) {
			return fmt.Errorf("%w: %q", model.ErrEmailTaken, acct.Email)
		}
	}
	return nil
}
