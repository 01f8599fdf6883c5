package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/model"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "data", "accounts.txt"), filepath.Join(dir, "data", "sales.txt"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := newTestFileStore(t)
	if _, err := s.GetAccount(context.Background(), "ada"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_CreateAndFind(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	ada := model.Account{Username: "ada", Email: "ada@example.com", PasswordHash: "$2a$10$abc", Balance: decimal.RequireFromString("1500.5")}
	if err := s.CreateAccount(ctx, ada); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	bob := model.Account{Username: "bob", Email: "bob@example.com", PasswordHash: "$2a$10$def", Balance: decimal.Zero}
	if err := s.CreateAccount(ctx, bob); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	raw, err := os.ReadFile(s.AccountsPath)
	if err != nil {
		t.Fatalf("read accounts: %v", err)
	}
	want := "ada, ada@example.com, $2a$10$abc, 1500.50\nbob, bob@example.com, $2a$10$def, 0.00\n"
	if string(raw) != want {
		t.Fatalf("unexpected file contents:\n%s", raw)
	}

	got, err := s.FindAccount(ctx, "bob@example.com")
	if err != nil || got.Username != "bob" {
		t.Fatalf("FindAccount by email: %+v, %v", got, err)
	}
	got, err = s.FindAccount(ctx, "ada")
	if err != nil || !got.Balance.Equal(decimal.RequireFromString("1500.5")) {
		t.Fatalf("FindAccount by username: %+v, %v", got, err)
	}
}

func TestFileStore_Uniqueness(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.CreateAccount(ctx, model.Account{Username: "ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := s.CreateAccount(ctx, model.Account{Username: "bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := s.CreateAccount(ctx, model.Account{Username: "ada", Email: "other@example.com"}); !errors.Is(err, model.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if err := s.CreateAccount(ctx, model.Account{Username: "cy", Email: "ADA@example.com"}); !errors.Is(err, model.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Renaming onto another account is rejected; keeping your own email is not.
	if err := s.UpdateAccount(ctx, "ada", model.Account{Username: "bob", Email: "ada@example.com"}); !errors.Is(err, model.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if err := s.UpdateAccount(ctx, "ada", model.Account{Username: "ada2", Email: "ada@example.com"}); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if _, err := s.GetAccount(ctx, "ada"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("old username still present: %v", err)
	}
	if _, err := s.GetAccount(ctx, "ada2"); err != nil {
		t.Fatalf("renamed account missing: %v", err)
	}
}

func TestFileStore_Delete(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c"} {
		if err := s.CreateAccount(ctx, model.Account{Username: u, Email: u + "@example.com"}); err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
	}
	if err := s.DeleteAccount(ctx, "b"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := s.DeleteAccount(ctx, "b"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	accounts, err := s.readAccounts(ctx)
	if err != nil {
		t.Fatalf("readAccounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0].Username != "a" || accounts[1].Username != "c" {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}
}

func TestFileStore_SkipsMalformedLines(t *testing.T) {
	s := newTestFileStore(t)
	content := "ada, ada@example.com, hash, 10.00\n\nbroken line\nbob, bob@example.com, hash, notanumber\ncy, cy@example.com, hash, 5\n"
	if err := os.WriteFile(s.AccountsPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	accounts, err := s.readAccounts(context.Background())
	if err != nil {
		t.Fatalf("readAccounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0].Username != "ada" || accounts[1].Username != "cy" {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}
}

func TestFileStore_RecordSaleAppends(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	r := testReceipt()
	if err := s.RecordSale(ctx, r); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	r.ID = "r-2"
	if err := s.RecordSale(ctx, r); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	raw, err := os.ReadFile(s.SalesPath)
	if err != nil {
		t.Fatalf("read sales: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 ledger lines, got %d", len(lines))
	}
	want := "r-1, ada, 245000.00, 2026-01-02T03:04:05Z, Rice×1|Beans×2"
	if lines[0] != want {
		t.Fatalf("unexpected ledger line:\n got %q\nwant %q", lines[0], want)
	}
}
