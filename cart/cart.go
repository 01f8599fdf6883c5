package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/model"
)

// Catalog is the part of the inventory a cart reads from.
type Catalog interface {
	Lookup(name string) (model.InventoryItem, error)
}

// Cart is a session's ordered selection of items, unique by item name.
// Prices are never copied into the cart; totals always use the catalog.
type Cart struct {
	catalog Catalog
	lines   []model.CartLine
}

// New returns an empty cart over catalog.
func New(catalog Catalog) *Cart {
	return &Cart{catalog: catalog}
}

// Add puts quantity units of itemName in the cart, merging with an existing
// line. The merged quantity must not exceed what the catalog has right now;
// checkout checks again.
func (c *Cart) Add(itemName string, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	idx := c.index(itemName)
	existing := 0
	if idx >= 0 {
		existing = c.lines[idx].Quantity
	}
	if err := c.checkAvailable(itemName, existing, quantity); err != nil {
		return err
	}
	if idx >= 0 {
		c.lines[idx].Quantity = existing + quantity
		return nil
	}
	c.lines = append(c.lines, model.CartLine{ItemName: itemName, Quantity: quantity})
	return nil
}

// SetQuantity replaces the quantity of an existing line.
func (c *Cart) SetQuantity(itemName string, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	idx := c.index(itemName)
	if idx < 0 {
		return notInCart(itemName)
	}
	if err := c.checkAvailable(itemName, 0, quantity); err != nil {
		return err
	}
	c.lines[idx].Quantity = quantity
	return nil
}

// Remove drops the whole line for itemName.
func (c *Cart) Remove(itemName string) error {
	idx := c.index(itemName)
	if idx < 0 {
		return notInCart(itemName)
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return nil
}

// RemoveQuantity takes quantity units off a line, dropping the line at zero.
func (c *Cart) RemoveQuantity(itemName string, quantity int) error {
	idx := c.index(itemName)
	if idx < 0 {
		return notInCart(itemName)
	}
	if quantity <= 0 || quantity > c.lines[idx].Quantity {
		return fmt.Errorf("%w: can remove 1 to %d of %q", model.ErrInvalidQuantity, c.lines[idx].Quantity, itemName)
	}
	if quantity == c.lines[idx].Quantity {
		return c.Remove(itemName)
	}
	c.lines[idx].Quantity -= quantity
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Total sums quantity × current unit price over all lines.
func (c *Cart) Total() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range c.lines {
		item, err := c.catalog.Lookup(l.ItemName)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total, nil
}

// View prices every line against the catalog, in cart order.
func (c *Cart) View() ([]model.LineView, error) {
	out := make([]model.LineView, 0, len(c.lines))
	for _, l := range c.lines {
		item, err := c.catalog.Lookup(l.ItemName)
		if err != nil {
			return nil, err
		}
		out = append(out, model.LineView{
			Item:      item,
			Quantity:  l.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return out, nil
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []model.CartLine {
	out := make([]model.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// StockRequests expresses the cart as catalog stock requests.
func (c *Cart) StockRequests() []model.StockRequest {
	out := make([]model.StockRequest, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, model.StockRequest{Item: l.ItemName, Quantity: l.Quantity})
	}
	return out
}

// Quantity returns how many units of itemName are in the cart.
func (c *Cart) Quantity(itemName string) int {
	if idx := c.index(itemName); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) index(itemName string) int {
	for i, l := range c.lines {
		if l.ItemName == itemName {
			return i
		}
	}
	return -1
}

// checkAvailable reports whether extra more units fit on top of existing.
// The comparison is done without summing so huge requests cannot wrap.
func (c *Cart) checkAvailable(itemName string, existing, extra int) error {
	item, err := c.catalog.Lookup(itemName)
	if err != nil {
		return err
	}
	if extra > item.QuantityAvailable-existing {
		return &model.StockError{
			Kind:       model.ErrOutOfStock,
			Shortfalls: []model.Shortfall{{Item: itemName, Requested: model.AddQuantities(existing, extra), Available: item.QuantityAvailable}},
		}
	}
	return nil
}

func notInCart(itemName string) error {
	return fmt.Errorf("%w: %q is not in the cart", model.ErrNotFound, itemName)
}
