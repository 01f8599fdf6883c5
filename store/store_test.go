package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"storefront/model"
)

var accountCols = []string{"username", "email", "password_hash", "balance"}

func TestGetAccount_FoundAndMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}
	ctx := context.Background()

	q := regexp.QuoteMeta(`SELECT username, email, password_hash, balance FROM accounts WHERE username = $1`)
	mock.ExpectQuery(q).
		WithArgs("ada").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow("ada", "ada@example.com", "hash", "150.50"))
	mock.ExpectQuery(q).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(accountCols))

	acct, err := s.GetAccount(ctx, "ada")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Email != "ada@example.com" || !acct.Balance.Equal(decimal.RequireFromString("150.5")) {
		t.Fatalf("unexpected account: %+v", acct)
	}

	if _, err := s.GetAccount(ctx, "bob"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindAccount_ByEmail(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE username = $1 OR email = $1`)).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow("ada", "ada@example.com", "hash", "0.00"))

	acct, err := s.FindAccount(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("FindAccount failed: %v", err)
	}
	if acct.Username != "ada" {
		t.Fatalf("expected ada, got %q", acct.Username)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAccount_UniqueViolations(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}
	ctx := context.Background()
	acct := model.Account{Username: "ada", Email: "ada@example.com", PasswordHash: "hash", Balance: decimal.Zero}

	insert := regexp.QuoteMeta(`INSERT INTO accounts (username, email, password_hash, balance) VALUES ($1, $2, $3, $4)`)
	mock.ExpectExec(insert).
		WithArgs("ada", "ada@example.com", "hash", "0.00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_pkey"})
	mock.ExpectExec(insert).
		WillReturnError(&pq.Error{Code: "23505", Constraint: emailConstraint})

	if err := s.CreateAccount(ctx, acct); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := s.CreateAccount(ctx, acct); !errors.Is(err, model.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if err := s.CreateAccount(ctx, acct); !errors.Is(err, model.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAccount_RenameAndMissing(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}
	ctx := context.Background()
	acct := model.Account{Username: "ada2", Email: "ada@example.com", PasswordHash: "hash", Balance: decimal.NewFromInt(55000)}

	update := regexp.QuoteMeta(`UPDATE accounts SET username = $1, email = $2, password_hash = $3, balance = $4`)
	mock.ExpectExec(update).
		WithArgs("ada2", "ada@example.com", "hash", "55000.00", "ada").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).
		WithArgs("ada2", "ada@example.com", "hash", "55000.00", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.UpdateAccount(ctx, "ada", acct); err != nil {
		t.Fatalf("UpdateAccount failed: %v", err)
	}
	if err := s.UpdateAccount(ctx, "ghost", acct); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteAccount_NoRowsAndSuccess(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}
	ctx := context.Background()

	del := regexp.QuoteMeta(`DELETE FROM accounts WHERE username = $1`)
	mock.ExpectExec(del).WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(del).WithArgs("ada").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeleteAccount(ctx, "ghost"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteAccount(ctx, "ada"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func testReceipt() model.Receipt {
	rice := model.InventoryItem{Name: "Rice", UnitPrice: decimal.NewFromInt(115000)}
	beans := model.InventoryItem{Name: "Beans", UnitPrice: decimal.NewFromInt(65000)}
	return model.Receipt{
		ID:       "r-1",
		Username: "ada",
		Lines: []model.LineView{
			{Item: rice, Quantity: 1, LineTotal: decimal.NewFromInt(115000)},
			{Item: beans, Quantity: 2, LineTotal: decimal.NewFromInt(130000)},
		},
		Total:           decimal.NewFromInt(245000),
		PreviousBalance: decimal.NewFromInt(300000),
		NewBalance:      decimal.NewFromInt(55000),
		SettledAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestRecordSale_Success(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sales (id, username, total, previous_balance, new_balance, settled_at)`)).
		WithArgs("r-1", "ada", "245000.00", "300000.00", "55000.00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO sale_items (sale_id, item_name, quantity, unit_price, line_total)`))
	prep.ExpectExec().
		WithArgs("r-1", "Rice", 1, "115000.00", "115000.00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("r-1", "Beans", 2, "65000.00", "130000.00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := s.RecordSale(context.Background(), testReceipt()); err != nil {
		t.Fatalf("RecordSale failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordSale_RollsBackOnItemFailure(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sales`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO sale_items`))
	prep.ExpectExec().WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	if err := s.RecordSale(context.Background(), testReceipt()); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS accounts`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
