package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/cart"
	"storefront/catalog"
	"storefront/logger"
	"storefront/model"
	"storefront/store"
	"storefront/wallet"
)

// Service owns account lifecycle and hands out sessions over the shared
// catalog.
type Service struct {
	store     store.Store
	catalog   *catalog.Catalog
	policy    wallet.FundPolicy
	validator *Validator
	currency  string
	hashCost  int
}

// Option configures a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost used for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithCurrency sets the currency code shown with amounts.
func WithCurrency(code string) Option {
	return func(s *Service) { s.currency = code }
}

func NewService(st store.Store, cat *catalog.Catalog, policy wallet.FundPolicy, opts ...Option) *Service {
	s := &Service{
		store:     st,
		catalog:   cat,
		policy:    policy,
		validator: NewValidator(),
		currency:  model.DefaultCurrency,
		hashCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Currency() string { return s.currency }

// FundOptions returns the fixed top-up amounts.
func (s *Service) FundOptions() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s.policy.Options))
	copy(out, s.policy.Options)
	return out
}

// FundAllowsAny reports whether any positive top-up is accepted.
func (s *Service) FundAllowsAny() bool { return s.policy.AllowAny }

// GeneratePassword returns a random password of the minimum length.
func (s *Service) GeneratePassword() (string, error) {
	return GeneratePassword(MinPasswordLength)
}

// SignUp creates an account with a zero balance.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (AccountDTO, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.ValidateStruct(in); err != nil {
		return AccountDTO{}, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return AccountDTO{}, err
	}

	hash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return AccountDTO{}, err
	}
	acct := model.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Balance:      decimal.Zero,
	}
	if err := s.store.CreateAccount(ctx, acct); err != nil {
		return AccountDTO{}, fmt.Errorf("create account: %w", err)
	}
	logger.FromContext(ctx).Info("Account created", "username", acct.Username)
	return toAccountDTO(acct), nil
}

// SignIn matches login against username or email and checks the password.
// A missing account and a wrong password give the same error.
func (s *Service) SignIn(ctx context.Context, login, password string) (*Session, error) {
	log := logger.FromContext(ctx)

	acct, err := s.store.FindAccount(ctx, strings.TrimSpace(login))
	if errors.Is(err, model.ErrNotFound) {
		log.Info("Sign in failed", "reason", "unknown login")
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !checkPassword(acct.PasswordHash, password) {
		log.Info("Sign in failed", "username", acct.Username, "reason", "wrong password")
		return nil, model.ErrInvalidCredentials
	}

	sess := &Session{
		id:      logger.GenerateSessionID(),
		svc:     s,
		account: acct,
		wallet:  wallet.New(acct.Balance, s.policy),
		cart:    cart.New(s.catalog),
	}
	logger.FromContext(sess.Context(ctx)).Info("Signed in", "username", acct.Username)
	return sess, nil
}

// ---- DTOs ----

type SignUpInput struct {
	Username string `validate:"required,max=32,excludesall=0x2C"`
	Email    string `validate:"required,email,max=254,excludesall=0x2C"`
	Password string `validate:"required"`
}

type AccountDTO struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Balance  decimal.Decimal `json:"balance"`
}

func toAccountDTO(a model.Account) AccountDTO {
	return AccountDTO{Username: a.Username, Email: a.Email, Balance: a.Balance}
}
