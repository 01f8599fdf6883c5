package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/checkout"
	"storefront/model"
	"storefront/service"
)

// --- login ---

func (h *Handler) loginMenu(ctx context.Context) (action, error) {
	h.banner("WELCOME TO E-COMMERCE APP")
	h.println("\n1. Sign In")
	h.println("2. Sign Up")
	h.println("3. Exit")

	choice, err := h.prompt("\nSelect option (1-3): ")
	if err != nil {
		return exit, err
	}
	switch choice {
	case "1":
		return h.signIn(ctx)
	case "2":
		return stay, h.signUp(ctx)
	case "3":
		h.println("\nThank you for visiting! Goodbye!")
		return exit, nil
	default:
		h.invalidOption()
		return stay, nil
	}
}

func (h *Handler) signIn(ctx context.Context) (action, error) {
	h.println("\n--- SIGN IN ---")
	login, err := h.prompt("Enter username or email: ")
	if err != nil {
		return exit, err
	}
	password, err := h.prompt("Enter password: ")
	if err != nil {
		return exit, err
	}

	sess, err := h.svc.SignIn(ctx, login, password)
	if err != nil {
		h.fail(err)
		return stay, nil
	}
	h.session = sess
	h.printf("\nWelcome back, %s!\n", sess.Username())
	return push(screenMain), nil
}

func (h *Handler) signUp(ctx context.Context) error {
	h.println("\n--- SIGN UP ---")
	username, err := h.prompt("Enter username: ")
	if err != nil {
		return err
	}
	email, err := h.prompt("Enter email: ")
	if err != nil {
		return err
	}
	password, err := h.choosePassword()
	if err != nil {
		return err
	}

	acct, err := h.svc.SignUp(ctx, service.SignUpInput{Username: username, Email: email, Password: password})
	if err != nil {
		h.fail(err)
		return nil
	}
	h.printf("\nAccount created successfully! Welcome, %s!\n", acct.Username)
	return nil
}

func (h *Handler) choosePassword() (string, error) {
	h.println("\nPassword Options:")
	h.println("1. Enter password manually")
	h.println("2. Generate password automatically")
	for {
		choice, err := h.prompt("Select option (1-2): ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			return h.newPassword("Enter password (min 16 chars, must include uppercase, lowercase, digit, special char): ")
		case "2":
			password, err := h.svc.GeneratePassword()
			if err != nil {
				return "", err
			}
			h.printf("Generated password: %s\n", password)
			return password, nil
		default:
			h.invalidOption()
		}
	}
}

// newPassword asks until the entry passes the strength rule.
func (h *Handler) newPassword(label string) (string, error) {
	for {
		password, err := h.prompt(label)
		if err != nil {
			return "", err
		}
		if err := service.ValidatePassword(password); err != nil {
			h.fail(err)
			continue
		}
		return password, nil
	}
}

// --- main ---

func (h *Handler) mainMenu(_ context.Context) (action, error) {
	h.banner("MAIN MENU - " + h.session.Username())
	h.println("\n1. Fund Wallet")
	h.println("2. Purchase")
	h.println("3. Manage Account")
	h.println("4. Exit")

	choice, err := h.prompt("\nSelect option (1-4): ")
	if err != nil {
		return exit, err
	}
	switch choice {
	case "1":
		return push(screenFund), nil
	case "2":
		return push(screenPurchase), nil
	case "3":
		return push(screenAccount), nil
	case "4":
		h.printf("\nThank you for your visit, %s!\n", h.session.Username())
		h.println("We look forward to seeing you again. Goodbye!")
		return logout, nil
	default:
		h.invalidOption()
		return stay, nil
	}
}

// --- fund ---

func (h *Handler) fundMenu(ctx context.Context) (action, error) {
	options := h.svc.FundOptions()
	h.println("\n--- FUND WALLET ---")
	h.printf("Current balance: %s\n", h.money(h.session.Balance()))
	h.println("\nFunding Options:")
	for i, amount := range options {
		h.printf("%d. %s\n", i+1, h.money(amount))
	}
	n := len(options)
	other := 0
	if h.svc.FundAllowsAny() {
		n++
		other = n
		h.printf("%d. Other amount\n", other)
	}
	h.printf("%d. Back to Main Menu\n", n+1)

	choice, ok, err := h.promptInt("Select option: ")
	if err != nil || !ok {
		return stay, err
	}

	var amount decimal.Decimal
	switch {
	case choice == n+1:
		return back, nil
	case choice >= 1 && choice <= len(options):
		amount = options[choice-1]
	case choice == other && other > 0:
		text, err := h.prompt("Enter amount: ")
		if err != nil {
			return exit, err
		}
		if amount, err = decimal.NewFromString(text); err != nil {
			h.fail(model.ErrInvalidAmount)
			return stay, nil
		}
	default:
		h.invalidOption()
		return stay, nil
	}

	balance, err := h.session.Fund(ctx, amount)
	if err != nil {
		h.fail(err)
		return stay, nil
	}
	h.printf("Funded %s\n", h.money(amount))
	h.printf("New balance: %s\n", h.money(balance))
	return stay, nil
}

// --- purchase ---

func (h *Handler) purchaseMenu(_ context.Context) (action, error) {
	h.banner("PURCHASE MENU")
	h.println("\n1. Search Items")
	h.println("2. Manage Cart")
	h.println("3. Checkout")
	h.println("4. Exit Purchase Menu")

	choice, err := h.prompt("\nSelect option (1-4): ")
	if err != nil {
		return exit, err
	}
	switch choice {
	case "1":
		h.results = nil
		return push(screenSearch), nil
	case "2":
		return push(screenCart), nil
	case "3":
		return push(screenCheckout), nil
	case "4":
		return back, nil
	default:
		h.invalidOption()
		return stay, nil
	}
}

func (h *Handler) searchMenu(_ context.Context) (action, error) {
	if len(h.results) == 0 {
		query, err := h.prompt("\nEnter search query (or 'back' to return): ")
		if err != nil {
			return exit, err
		}
		if strings.EqualFold(query, "back") {
			return back, nil
		}
		h.results = h.session.Search(query)
		if len(h.results) == 0 {
			h.println("No items found matching your search.")
			return stay, nil
		}
		h.println("\nSearch Results:")
		h.listItems(h.results)
	}

	h.println("\n1. Search Again")
	h.println("2. Add Items to Cart")
	h.println("3. Exit Search Menu")
	choice, err := h.prompt("Select option (1-3): ")
	if err != nil {
		return exit, err
	}
	switch choice {
	case "1":
		h.results = nil
	case "2":
		if err := h.addFrom(h.results, "\nEnter item number to add (or 0 to go back): "); err != nil {
			return exit, err
		}
		h.results = nil
	case "3":
		h.results = nil
		return back, nil
	default:
		h.invalidOption()
	}
	return stay, nil
}

func (h *Handler) listItems(items []model.InventoryItem) {
	for i, it := range items {
		note := ""
		if !it.Purchasable() {
			note = " (out of stock)"
		}
		h.printf("%d. %s - %s%s\n", i+1, it.Name, h.money(it.UnitPrice), note)
	}
}

// addFrom lets the user pick one of items and a quantity for the cart.
func (h *Handler) addFrom(items []model.InventoryItem, label string) error {
	num, ok, err := h.promptInt(label)
	if err != nil || !ok || num == 0 {
		return err
	}
	if num < 1 || num > len(items) {
		h.println("Invalid item number.")
		return nil
	}
	item := items[num-1]
	qty, ok, err := h.promptInt("How many " + item.Name + "? ")
	if err != nil || !ok {
		return err
	}
	if err := h.session.AddToCart(item.Name, qty); err != nil {
		h.fail(err)
		return nil
	}
	h.printf("Added %d x %s to cart\n", qty, item.Name)
	return nil
}

// --- cart ---

func (h *Handler) cartMenu(_ context.Context) (action, error) {
	h.banner("MANAGE CART")
	if err := h.showCart(); err != nil {
		h.fail(err)
	}

	h.println("\n1. View Items in Cart")
	h.println("2. Add Items to Cart")
	h.println("3. Remove Items from Cart")
	h.println("4. Clear Cart")
	h.println("5. Exit Manage Cart Menu")

	choice, err := h.prompt("\nSelect option (1-5): ")
	if err != nil {
		return exit, err
	}
	switch choice {
	case "1":
	case "2":
		items := h.session.CatalogItems()
		h.println("\nAvailable Items:")
		h.listItems(items)
		if err := h.addFrom(items, "\nEnter item number (or 0 to go back): "); err != nil {
			return exit, err
		}
	case "3":
		if err := h.removeFromCart(); err != nil {
			return exit, err
		}
	case "4":
		h.session.ClearCart()
		h.println("Cart cleared.")
	case "5":
		return back, nil
	default:
		h.invalidOption()
	}
	return stay, nil
}

func (h *Handler) showCart() error {
	lines, err := h.session.ViewCart()
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		h.println("Cart is empty.")
		return nil
	}
	h.println("\nCart Contents:")
	for i, l := range lines {
		h.printf("%d. %s\n", i+1, l.Item.Name)
		h.printf("   Quantity: %d, Price: %s, Total: %s\n", l.Quantity, h.money(l.Item.UnitPrice), h.money(l.LineTotal))
	}
	total, err := h.session.CartTotal()
	if err != nil {
		return err
	}
	h.printf("\nCart total: %s\n", h.money(total))
	return nil
}

func (h *Handler) removeFromCart() error {
	lines := h.session.CartLines()
	if len(lines) == 0 {
		h.println("Cart is empty.")
		return nil
	}
	h.println("\nItems in Cart:")
	for i, l := range lines {
		h.printf("%d. %s (qty: %d)\n", i+1, l.ItemName, l.Quantity)
	}

	num, ok, err := h.promptInt("\nEnter item number to remove (or 0 to go back): ")
	if err != nil || !ok || num == 0 {
		return err
	}
	if num < 1 || num > len(lines) {
		h.println("Invalid item number.")
		return nil
	}
	qty, ok, err := h.promptInt("How many to remove? ")
	if err != nil || !ok {
		return err
	}
	if err := h.session.RemoveQuantity(lines[num-1].ItemName, qty); err != nil {
		h.fail(err)
		return nil
	}
	h.println("Item removed from cart.")
	return nil
}

// --- checkout ---

func (h *Handler) checkoutScreen(ctx context.Context) (action, error) {
	co, err := h.session.BeginCheckout()
	if errors.Is(err, model.ErrEmptyCart) {
		h.println("Cart is empty. Nothing to checkout.")
		return back, nil
	}
	if err != nil {
		h.fail(err)
		return back, nil
	}

	h.banner("CHECKOUT")
	summary := co.Summary()
	h.println("\nCart Summary:")
	for _, l := range summary.Lines {
		h.printf("%s: %d x %s = %s\n", l.Item.Name, l.Quantity, h.money(l.Item.UnitPrice), h.money(l.LineTotal))
	}
	h.printf("\nTotal: %s\n", h.money(summary.Total))
	h.printf("Balance: %s\n", h.money(summary.Balance))

	yes, err := h.confirm("Proceed to payment?")
	if err != nil {
		return exit, err
	}
	if !yes {
		if err := co.Cancel(); err != nil {
			return back, err
		}
		h.println("Checkout cancelled.")
		return back, nil
	}

	receipt, err := co.Confirm(ctx)
	switch {
	case co.State() == checkout.Settled:
		h.printf("\nPayment successful! Remaining balance: %s\n", h.money(receipt.NewBalance))
		h.printf("Receipt: %s (%d items)\n", receipt.ID, receipt.Units())
		if err != nil {
			h.printf("WARNING: %v\n", err)
		}
	case errors.Is(err, model.ErrInsufficientFunds):
		h.printf("ERROR: Insufficient funds. Your balance: %s\n", h.money(h.session.Balance()))
	default:
		h.fail(err)
	}
	return back, nil
}

// --- account ---

func (h *Handler) accountMenu(ctx context.Context) (action, error) {
	h.banner("MANAGE ACCOUNT")
	h.println("\n1. Change Username")
	h.println("2. Change Email")
	h.println("3. Change Password")
	h.println("4. View Account Details")
	h.println("5. Reset Balance")
	h.println("6. Delete Account")
	h.println("7. Logout")
	h.println("8. Exit Manage Account")

	choice, err := h.prompt("\nSelect option (1-8): ")
	if err != nil {
		return exit, err
	}
	switch choice {
	case "1":
		return stay, h.changeUsername(ctx)
	case "2":
		return stay, h.changeEmail(ctx)
	case "3":
		return stay, h.changePassword(ctx)
	case "4":
		return stay, h.viewDetails()
	case "5":
		return stay, h.resetBalance(ctx)
	case "6":
		return h.deleteAccount(ctx)
	case "7":
		return logout, nil
	case "8":
		return back, nil
	default:
		h.invalidOption()
		return stay, nil
	}
}

func (h *Handler) verifyPassword() (string, bool, error) {
	password, err := h.prompt("Enter your password to verify: ")
	if err != nil {
		return "", false, err
	}
	if !h.session.VerifyPassword(password) {
		h.println("ERROR: Incorrect password.")
		return "", false, nil
	}
	return password, true, nil
}

func (h *Handler) changeUsername(ctx context.Context) error {
	h.println("\n--- CHANGE USERNAME ---")
	password, ok, err := h.verifyPassword()
	if err != nil || !ok {
		return err
	}
	name, err := h.prompt("Enter new username: ")
	if err != nil {
		return err
	}
	if err := h.session.ChangeUsername(ctx, password, name); err != nil {
		h.fail(err)
		return nil
	}
	h.printf("Username changed to %s\n", h.session.Username())
	return nil
}

func (h *Handler) changeEmail(ctx context.Context) error {
	h.println("\n--- CHANGE EMAIL ---")
	password, ok, err := h.verifyPassword()
	if err != nil || !ok {
		return err
	}
	email, err := h.prompt("Enter new email: ")
	if err != nil {
		return err
	}
	if err := h.session.ChangeEmail(ctx, password, email); err != nil {
		h.fail(err)
		return nil
	}
	h.printf("Email changed to %s\n", strings.TrimSpace(email))
	return nil
}

func (h *Handler) changePassword(ctx context.Context) error {
	h.println("\n--- CHANGE PASSWORD ---")
	current, err := h.prompt("Enter current password: ")
	if err != nil {
		return err
	}
	if !h.session.VerifyPassword(current) {
		h.println("ERROR: Incorrect password.")
		return nil
	}
	next, err := h.newPassword("Enter new password: ")
	if err != nil {
		return err
	}
	if err := h.session.ChangePassword(ctx, current, next); err != nil {
		h.fail(err)
		return nil
	}
	h.println("Password changed successfully.")
	return nil
}

func (h *Handler) viewDetails() error {
	h.println("\n--- ACCOUNT DETAILS ---")
	password, ok, err := h.verifyPassword()
	if err != nil || !ok {
		return err
	}
	acct, err := h.session.Details(password)
	if err != nil {
		h.fail(err)
		return nil
	}
	h.printf("Username: %s\n", acct.Username)
	h.printf("Email: %s\n", acct.Email)
	h.printf("Balance: %s\n", h.money(acct.Balance))
	return nil
}

func (h *Handler) resetBalance(ctx context.Context) error {
	h.println("\n--- RESET BALANCE ---")
	password, ok, err := h.verifyPassword()
	if err != nil || !ok {
		return err
	}
	yes, err := h.confirm("Are you sure you want to reset your balance to zero?")
	if err != nil || !yes {
		return err
	}
	if _, err := h.session.ResetBalance(ctx, password); err != nil {
		h.fail(err)
		return nil
	}
	h.println("Balance reset to zero.")
	return nil
}

func (h *Handler) deleteAccount(ctx context.Context) (action, error) {
	h.println("\n--- DELETE ACCOUNT ---")
	password, ok, err := h.verifyPassword()
	if err != nil || !ok {
		return stay, err
	}
	yes, err := h.confirm("Are you sure you want to delete your account? This cannot be undone.")
	if err != nil || !yes {
		return stay, err
	}
	if err := h.session.DeleteAccount(ctx, password); err != nil {
		h.fail(err)
		return stay, nil
	}
	h.println("Account deleted successfully.")
	return logout, nil
}
