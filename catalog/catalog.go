package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"storefront/logger"
	"storefront/model"
)

// ErrEmptyCatalog is returned by Load when no record could be parsed.
var ErrEmptyCatalog = errors.New("no inventory items found")

// Catalog is the set of purchasable items, kept in insertion order.
type Catalog struct {
	items    map[string]*model.InventoryItem
	order    []string
	opts     Options
	matchers *lru.Cache[string, matcher]
}

// New builds a catalog from parsed records. A repeated name keeps its first
// position and takes the last price and stock.
func New(records []Record, opts Options) *Catalog {
	c := &Catalog{
		items: make(map[string]*model.InventoryItem, len(records)),
		order: make([]string, 0, len(records)),
		opts:  opts,
	}
	if opts.SearchCacheSize > 0 {
		// lru.New only fails for a non-positive size.
		c.matchers, _ = lru.New[string, matcher](opts.SearchCacheSize)
	}
	for _, r := range records {
		stock := opts.DefaultStock
		if r.HasStock {
			stock = r.Stock
		}
		if item, ok := c.items[r.Name]; ok {
			item.UnitPrice = r.Price
			item.QuantityAvailable = stock
			continue
		}
		c.items[r.Name] = &model.InventoryItem{Name: r.Name, UnitPrice: r.Price, QuantityAvailable: stock}
		c.order = append(c.order, r.Name)
	}
	return c
}

// Load parses raw and builds a catalog. Malformed records are logged and
// skipped; only a catalog with no items at all is an error.
func Load(ctx context.Context, raw string, opts Options) (*Catalog, error) {
	log := logger.FromContext(ctx)

	records, err := Parse(raw)
	if err != nil {
		var pe *model.ParseError
		for _, e := range unwrapAll(err) {
			if errors.As(e, &pe) {
				log.Warn("Skipping malformed inventory record", "index", pe.Index, "record", pe.Record, "reason", pe.Reason)
			}
		}
	}

	c := New(records, opts)
	if c.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	log.Info("Catalog loaded", "items", c.Len(), "skipped", len(unwrapAll(err)))
	return c, nil
}

func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// Len returns the number of listed items.
func (c *Catalog) Len() int { return len(c.order) }

// Lookup returns a copy of the named item.
func (c *Catalog) Lookup(name string) (model.InventoryItem, error) {
	item, ok := c.items[name]
	if !ok {
		return model.InventoryItem{}, fmt.Errorf("%w: item %q", model.ErrNotFound, name)
	}
	return *item, nil
}

// Items yields every listed item in insertion order.
func (c *Catalog) Items() iter.Seq[model.InventoryItem] {
	return func(yield func(model.InventoryItem) bool) {
		for _, name := range c.order {
			item, ok := c.items[name]
			if !ok {
				continue
			}
			if !yield(*item) {
				return
			}
		}
	}
}

// DecrementStock removes quantity units of name from stock.
func (c *Catalog) DecrementStock(name string, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	item, ok := c.items[name]
	if !ok {
		return fmt.Errorf("%w: item %q", model.ErrNotFound, name)
	}
	if quantity > item.QuantityAvailable {
		return &model.StockError{
			Kind:       model.ErrOutOfStock,
			Shortfalls: []model.Shortfall{{Item: name, Requested: quantity, Available: item.QuantityAvailable}},
		}
	}
	item.QuantityAvailable -= quantity
	if item.QuantityAvailable == 0 && c.opts.ZeroStock == ZeroStockRemove {
		c.remove(name)
	}
	return nil
}

// CheckStock verifies every request against current stock without changing
// anything. Requests for the same item are summed. All shortfalls are
// reported together.
func (c *Catalog) CheckStock(requests []model.StockRequest) error {
	wanted := make(map[string]int, len(requests))
	order := make([]string, 0, len(requests))
	for _, r := range requests {
		if r.Quantity <= 0 {
			return fmt.Errorf("%w: item %q", model.ErrInvalidQuantity, r.Item)
		}
		if _, seen := wanted[r.Item]; !seen {
			order = append(order, r.Item)
		}
		wanted[r.Item] = model.AddQuantities(wanted[r.Item], r.Quantity)
	}

	var shortfalls []model.Shortfall
	for _, name := range order {
		available := 0
		if item, ok := c.items[name]; ok {
			available = item.QuantityAvailable
		}
		if wanted[name] > available {
			shortfalls = append(shortfalls, model.Shortfall{Item: name, Requested: wanted[name], Available: available})
		}
	}
	if len(shortfalls) > 0 {
		return &model.StockError{Kind: model.ErrInsufficientStock, Shortfalls: shortfalls}
	}
	return nil
}

// DecrementAll applies every request or none of them. If a decrement fails
// after CheckStock passed, the items already touched are put back.
func (c *Catalog) DecrementAll(requests []model.StockRequest) error {
	if err := c.CheckStock(requests); err != nil {
		return err
	}
	snap := c.snapshot(requests)
	for _, r := range requests {
		if err := c.DecrementStock(r.Item, r.Quantity); err != nil {
			c.restore(snap)
			return fmt.Errorf("%w: %v", model.ErrInvariantViolation, err)
		}
	}
	return nil
}

// stockSnapshot holds the state DecrementAll may change.
type stockSnapshot struct {
	order  []string
	items  map[string]*model.InventoryItem
	values map[string]model.InventoryItem
}

func (c *Catalog) snapshot(requests []model.StockRequest) stockSnapshot {
	snap := stockSnapshot{
		order:  slices.Clone(c.order),
		items:  make(map[string]*model.InventoryItem, len(requests)),
		values: make(map[string]model.InventoryItem, len(requests)),
	}
	for _, r := range requests {
		if item, ok := c.items[r.Item]; ok {
			snap.items[r.Item] = item
			snap.values[r.Item] = *item
		}
	}
	return snap
}

func (c *Catalog) restore(snap stockSnapshot) {
	for name, item := range snap.items {
		*item = snap.values[name]
		c.items[name] = item
	}
	c.order = snap.order
}

func (c *Catalog) remove(name string) {
	delete(c.items, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
