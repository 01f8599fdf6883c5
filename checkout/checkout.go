package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/logger"
	"storefront/model"
)

// State of a checkout.
type State int

const (
	Reviewing State = iota
	Validating
	Settled
	Aborted
)

func (s State) String() string {
	switch s {
	case Reviewing:
		return "reviewing"
	case Validating:
		return "validating"
	case Settled:
		return "settled"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Cart is what checkout consumes from the session cart.
type Cart interface {
	IsEmpty() bool
	View() ([]model.LineView, error)
	Total() (decimal.Decimal, error)
	StockRequests() []model.StockRequest
	Clear()
}

// Wallet is the balance being charged.
type Wallet interface {
	Balance() decimal.Decimal
	Debit(amount decimal.Decimal) error
	Refund(amount decimal.Decimal)
}

// Catalog is the inventory being decremented.
type Catalog interface {
	CheckStock(requests []model.StockRequest) error
	DecrementAll(requests []model.StockRequest) error
}

// OnSettled receives the receipt after settlement, typically to persist the
// new balance and record the sale.
type OnSettled func(ctx context.Context, receipt model.Receipt) error

// Summary is what the user reviews before confirming.
type Summary struct {
	Lines   []model.LineView
	Total   decimal.Decimal
	Balance decimal.Decimal
}

// Affordable reports whether the balance covers the total.
func (s Summary) Affordable() bool {
	return s.Balance.GreaterThanOrEqual(s.Total)
}

// Option configures a Checkout.
type Option func(*Checkout)

// WithOnSettled registers the settlement callback.
func WithOnSettled(fn OnSettled) Option {
	return func(c *Checkout) { c.onSettled = fn }
}

// WithUsername stamps receipts with the buyer.
func WithUsername(username string) Option {
	return func(c *Checkout) { c.username = username }
}

// WithClock overrides time.Now for receipts.
func WithClock(now func() time.Time) Option {
	return func(c *Checkout) { c.now = now }
}

// WithIDGenerator overrides receipt id generation.
func WithIDGenerator(newID func() string) Option {
	return func(c *Checkout) { c.newID = newID }
}

// Checkout moves a cart from Reviewing through Validating to Settled or
// Aborted. Every check runs before the first mutation.
type Checkout struct {
	cart    Cart
	wallet  Wallet
	catalog Catalog

	state    State
	summary  Summary
	abortErr error

	username  string
	onSettled OnSettled
	now       func() time.Time
	newID     func() string
}

// Begin opens a checkout in the Reviewing state.
func Begin(cart Cart, wallet Wallet, catalog Catalog, opts ...Option) (*Checkout, error) {
	if cart.IsEmpty() {
		return nil, model.ErrEmptyCart
	}
	c := &Checkout{
		cart:    cart,
		wallet:  wallet,
		catalog: catalog,
		state:   Reviewing,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	summary, err := c.review()
	if err != nil {
		return nil, err
	}
	c.summary = summary
	return c, nil
}

// State returns the current state.
func (c *Checkout) State() State { return c.state }

// Summary returns the lines and total shown for review.
func (c *Checkout) Summary() Summary { return c.summary }

// Err returns why the checkout was aborted, if it was.
func (c *Checkout) Err() error { return c.abortErr }

// Cancel abandons the checkout. Nothing is changed.
func (c *Checkout) Cancel() error {
	if c.state != Reviewing {
		return fmt.Errorf("%w: cannot cancel while %s", model.ErrInvalidState, c.state)
	}
	c.state = Aborted
	c.abortErr = context.Canceled
	return nil
}

// Confirm validates stock and funds and, if both pass, settles: the wallet
// is debited, stock is decremented and the cart is cleared. On any
// validation failure nothing changes and the checkout is Aborted.
//
// If onSettled fails the settlement stands and the receipt is returned
// together with the error.
func (c *Checkout) Confirm(ctx context.Context) (model.Receipt, error) {
	log := logger.FromContext(ctx)

	if c.state != Reviewing {
		return model.Receipt{}, fmt.Errorf("%w: cannot confirm while %s", model.ErrInvalidState, c.state)
	}
	c.state = Validating

	// Prices and stock are read again: they may have moved since review.
	summary, err := c.review()
	if err != nil {
		return model.Receipt{}, c.abort(ctx, err)
	}
	requests := c.cart.StockRequests()
	if err := c.catalog.CheckStock(requests); err != nil {
		return model.Receipt{}, c.abort(ctx, err)
	}
	if !summary.Affordable() {
		return model.Receipt{}, c.abort(ctx, fmt.Errorf("%w: balance %s, total %s",
			model.ErrInsufficientFunds, summary.Balance, summary.Total))
	}

	if err := c.wallet.Debit(summary.Total); err != nil {
		return model.Receipt{}, c.abort(ctx, err)
	}
	if err := c.catalog.DecrementAll(requests); err != nil {
		c.wallet.Refund(summary.Total)
		if !errors.Is(err, model.ErrInvariantViolation) {
			err = fmt.Errorf("%w: stock decrement failed after validation: %v", model.ErrInvariantViolation, err)
		}
		log.Error("Settlement rolled back", "error", err)
		return model.Receipt{}, c.abort(ctx, err)
	}
	c.cart.Clear()
	c.state = Settled

	receipt := model.Receipt{
		ID:              c.newID(),
		Username:        c.username,
		Lines:           summary.Lines,
		Total:           summary.Total,
		PreviousBalance: summary.Balance,
		NewBalance:      c.wallet.Balance(),
		SettledAt:       c.now(),
	}
	log.Info("Checkout settled", "receipt", receipt.ID, "username", c.username, "total", receipt.Total.String(), "units", receipt.Units())

	if c.onSettled != nil {
		if err := c.onSettled(ctx, receipt); err != nil {
			log.Error("Settlement callback failed", "receipt", receipt.ID, "error", err)
			return receipt, fmt.Errorf("checkout settled but could not be recorded: %w", err)
		}
	}
	return receipt, nil
}

func (c *Checkout) review() (Summary, error) {
	lines, err := c.cart.View()
	if err != nil {
		return Summary{}, err
	}
	total, err := c.cart.Total()
	if err != nil {
		return Summary{}, err
	}
	return Summary{Lines: lines, Total: total, Balance: c.wallet.Balance()}, nil
}

func (c *Checkout) abort(ctx context.Context, err error) error {
	c.state = Aborted
	c.abortErr = err
	logger.FromContext(ctx).Info("Checkout aborted", "username", c.username, "reason", err.Error())
	return err
}
