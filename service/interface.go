package service

import (
	"context"

	"github.com/shopspring/decimal"
)

type ServiceInterface interface {
	SignUp(ctx context.Context, in SignUpInput) (AccountDTO, error)
	SignIn(ctx context.Context, login, password string) (*Session, error)
	GeneratePassword() (string, error)
	FundOptions() []decimal.Decimal
	FundAllowsAny() bool
	Currency() string
}
