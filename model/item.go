package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// InventoryItem is one catalog entry. Name is the unique key.
type InventoryItem struct {
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	QuantityAvailable int             `json:"quantity_available"`
}

// Purchasable reports whether at least one unit can still be bought.
func (i InventoryItem) Purchasable() bool {
	return i.QuantityAvailable > 0
}

// CartLine references a catalog item by name. It does not own the item.
type CartLine struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// LineView is a cart line priced against the current catalog.
type LineView struct {
	Item      InventoryItem   `json:"item"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// StockRequest asks for Quantity units of Item.
type StockRequest struct {
	Item     string
	Quantity int
}

// AddQuantities sums two non-negative quantities, saturating at math.MaxInt.
func AddQuantities(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
