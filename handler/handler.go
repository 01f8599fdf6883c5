package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/logger"
	"storefront/model"
	"storefront/service"
)

type screen int

const (
	screenLogin screen = iota
	screenMain
	screenFund
	screenPurchase
	screenSearch
	screenCart
	screenCheckout
	screenAccount
)

func (s screen) String() string {
	return [...]string{"login", "main", "fund", "purchase", "search", "cart", "checkout", "account"}[s]
}

type op int

const (
	opStay op = iota
	opPush
	opPop
	opLogout
	opExit
)

// action is what a screen asks the loop to do next.
type action struct {
	op   op
	next screen
}

var (
	stay   = action{op: opStay}
	back   = action{op: opPop}
	logout = action{op: opLogout}
	exit   = action{op: opExit}
)

func push(s screen) action { return action{op: opPush, next: s} }

// Handler is the console layer that talks to service.Service. Menus form a
// stack with the login screen at the bottom; it never grows past maxDepth.
type Handler struct {
	svc      service.ServiceInterface
	in       *bufio.Scanner
	out      io.Writer
	maxDepth int

	stack   []screen
	session *service.Session
	results []model.InventoryItem
}

// NewHandler returns a Handler reading commands from in and writing to out.
func NewHandler(s service.ServiceInterface, in io.Reader, out io.Writer, maxDepth int) *Handler {
	return &Handler{
		svc:      s,
		in:       bufio.NewScanner(in),
		out:      out,
		maxDepth: maxDepth,
	}
}

// Run drives the menus until the user exits or input ends. End of input is
// a clean exit.
func (h *Handler) Run(ctx context.Context) error {
	h.stack = []screen{screenLogin}
	for len(h.stack) > 0 {
		current := h.stack[len(h.stack)-1]
		act, err := h.show(h.context(ctx), current)
		if errors.Is(err, io.EOF) {
			h.println()
			return nil
		}
		if err != nil {
			return err
		}

		switch act.op {
		case opPush:
			if len(h.stack) >= h.maxDepth {
				logger.FromContext(h.context(ctx)).Warn("Menu stack full", "depth", len(h.stack), "screen", act.next.String())
				h.printf("ERROR: %v\n", model.ErrStateStackOverflow)
				continue
			}
			h.stack = append(h.stack, act.next)
		case opPop:
			h.stack = h.stack[:len(h.stack)-1]
		case opLogout:
			h.session = nil
			h.results = nil
			h.stack = []screen{screenLogin}
			h.println("\nReturning to login...")
		case opExit:
			return nil
		}
	}
	return nil
}

func (h *Handler) show(ctx context.Context, s screen) (action, error) {
	switch s {
	case screenLogin:
		return h.loginMenu(ctx)
	case screenMain:
		return h.mainMenu(ctx)
	case screenFund:
		return h.fundMenu(ctx)
	case screenPurchase:
		return h.purchaseMenu(ctx)
	case screenSearch:
		return h.searchMenu(ctx)
	case screenCart:
		return h.cartMenu(ctx)
	case screenCheckout:
		return h.checkoutScreen(ctx)
	case screenAccount:
		return h.accountMenu(ctx)
	default:
		return exit, fmt.Errorf("unknown screen %d", s)
	}
}

func (h *Handler) context(ctx context.Context) context.Context {
	if h.session == nil {
		return ctx
	}
	return h.session.Context(ctx)
}

// --- I/O helpers ---

func (h *Handler) printf(format string, args ...any) {
	fmt.Fprintf(h.out, format, args...)
}

func (h *Handler) println(args ...any) {
	fmt.Fprintln(h.out, args...)
}

func (h *Handler) banner(title string) {
	line := strings.Repeat("=", 50)
	h.printf("\n%s\n%s\n%s\n", line, title, line)
}

func (h *Handler) money(amount decimal.Decimal) string {
	return model.FormatCurrency(h.svc.Currency(), amount)
}

// prompt writes label and returns the next trimmed input line.
func (h *Handler) prompt(label string) (string, error) {
	h.printf("%s", label)
	if !h.in.Scan() {
		if err := h.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(h.in.Text()), nil
}

// promptInt reads a whole number. ok is false after printing a complaint.
func (h *Handler) promptInt(label string) (n int, ok bool, err error) {
	text, err := h.prompt(label)
	if err != nil {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(text)
	if convErr != nil {
		h.println("Invalid input. Please enter a whole number.")
		return 0, false, nil
	}
	return n, true, nil
}

// confirm asks a yes/no question; only "yes" counts.
func (h *Handler) confirm(label string) (bool, error) {
	text, err := h.prompt(label + " (yes/no): ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(text, "yes"), nil
}

func (h *Handler) fail(err error) {
	h.printf("ERROR: %v\n", err)
}

func (h *Handler) invalidOption() {
	h.println("Invalid option. Please try again.")
}
