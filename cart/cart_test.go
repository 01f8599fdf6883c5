package cart

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/catalog"
	"storefront/model"
)

func newCatalog(t *testing.T, raw string) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(context.Background(), raw, catalog.DefaultOptions())
	require.NoError(t, err)
	return c
}

func TestAddMergesAndTotals(t *testing.T) {
	c := New(newCatalog(t, "Rice: 115000;Beans: 65000"))

	require.NoError(t, c.Add("Rice", 1))
	require.NoError(t, c.Add("Beans", 1))
	require.NoError(t, c.Add("Beans", 1))

	assert.Equal(t, []model.CartLine{{ItemName: "Rice", Quantity: 1}, {ItemName: "Beans", Quantity: 2}}, c.Lines())

	total, err := c.Total()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(245000)), total.String())
}

func TestAddValidation(t *testing.T) {
	c := New(newCatalog(t, "Rice: 100: 3;Yam: 10: 0"))

	assert.ErrorIs(t, c.Add("Rice", 0), model.ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("Rice", -2), model.ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add("Garri", 1), model.ErrNotFound)
	assert.ErrorIs(t, c.Add("Yam", 1), model.ErrOutOfStock)

	require.NoError(t, c.Add("Rice", 2))
	assert.ErrorIs(t, c.Add("Rice", 2), model.ErrOutOfStock, "merged quantity exceeds stock")
	assert.Equal(t, 2, c.Quantity("Rice"))
}

func TestAddHugeQuantityOnExistingLine(t *testing.T) {
	c := New(newCatalog(t, "Rice: 115000"))
	require.NoError(t, c.Add("Rice", 1))

	err := c.Add("Rice", math.MaxInt)
	require.ErrorIs(t, err, model.ErrOutOfStock)
	var se *model.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, math.MaxInt, se.Shortfalls[0].Requested)

	assert.Equal(t, 1, c.Quantity("Rice"))
	total, err := c.Total()
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(115000)), total.String())
}

func TestRemove(t *testing.T) {
	c := New(newCatalog(t, "Rice: 100;Beans: 50"))
	require.NoError(t, c.Add("Rice", 1))
	require.NoError(t, c.Add("Beans", 1))

	require.NoError(t, c.Remove("Rice"))
	assert.Equal(t, []model.CartLine{{ItemName: "Beans", Quantity: 1}}, c.Lines())
	assert.ErrorIs(t, c.Remove("Rice"), model.ErrNotFound)
}

func TestRemoveQuantity(t *testing.T) {
	c := New(newCatalog(t, "Rice: 100"))
	require.NoError(t, c.Add("Rice", 5))

	require.NoError(t, c.RemoveQuantity("Rice", 2))
	assert.Equal(t, 3, c.Quantity("Rice"))

	assert.ErrorIs(t, c.RemoveQuantity("Rice", 4), model.ErrInvalidQuantity)
	assert.ErrorIs(t, c.RemoveQuantity("Rice", 0), model.ErrInvalidQuantity)
	assert.ErrorIs(t, c.RemoveQuantity("Beans", 1), model.ErrNotFound)

	require.NoError(t, c.RemoveQuantity("Rice", 3))
	assert.True(t, c.IsEmpty())
}

func TestSetQuantity(t *testing.T) {
	c := New(newCatalog(t, "Rice: 100: 4"))
	assert.ErrorIs(t, c.SetQuantity("Rice", 1), model.ErrNotFound)

	require.NoError(t, c.Add("Rice", 1))
	require.NoError(t, c.SetQuantity("Rice", 4))
	assert.Equal(t, 4, c.Quantity("Rice"))
	assert.ErrorIs(t, c.SetQuantity("Rice", 5), model.ErrOutOfStock)
	assert.ErrorIs(t, c.SetQuantity("Rice", 0), model.ErrInvalidQuantity)
	assert.Equal(t, 4, c.Quantity("Rice"))
}

func TestClearIsIdempotent(t *testing.T) {
	c := New(newCatalog(t, "Rice: 100"))
	require.NoError(t, c.Add("Rice", 1))

	c.Clear()
	assert.True(t, c.IsEmpty())
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Len())

	total, err := c.Total()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestViewUsesCurrentCatalog(t *testing.T) {
	cat := newCatalog(t, "Rice: 115000: 5;Beans: 65000: 5")
	c := New(cat)
	require.NoError(t, c.Add("Beans", 2))
	require.NoError(t, c.Add("Rice", 1))

	view, err := c.View()
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, "Beans", view[0].Item.Name)
	assert.True(t, view[0].LineTotal.Equal(decimal.NewFromInt(130000)))
	assert.Equal(t, 1, view[1].Quantity)

	require.NoError(t, cat.DecrementStock("Rice", 2))
	view, err = c.View()
	require.NoError(t, err)
	assert.Equal(t, 3, view[1].Item.QuantityAvailable)
}

func TestTotalReportsMissingItem(t *testing.T) {
	opts := catalog.DefaultOptions()
	opts.ZeroStock = catalog.ZeroStockRemove
	cat, err := catalog.Load(context.Background(), "Rice: 100: 1", opts)
	require.NoError(t, err)

	c := New(cat)
	require.NoError(t, c.Add("Rice", 1))
	require.NoError(t, cat.DecrementStock("Rice", 1))

	_, err = c.Total()
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = c.View()
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTotalMatchesRecomputedLinesAfterRandomOps(t *testing.T) {
	cat := newCatalog(t, "A: 1.25: 50;B: 10: 50;C: 99.99: 50;D: 0.01: 50")
	names := []string{"A", "B", "C", "D"}
	rng := rand.New(rand.NewSource(7))
	c := New(cat)

	for i := 0; i < 500; i++ {
		name := names[rng.Intn(len(names))]
		switch rng.Intn(5) {
		case 0, 1:
			_ = c.Add(name, 1+rng.Intn(3))
		case 2:
			_ = c.Remove(name)
		case 3:
			_ = c.RemoveQuantity(name, 1)
		case 4:
			if rng.Intn(10) == 0 {
				c.Clear()
			}
		}

		want := decimal.Zero
		for _, l := range c.Lines() {
			item, err := cat.Lookup(l.ItemName)
			require.NoError(t, err)
			want = want.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		got, err := c.Total()
		require.NoError(t, err)
		require.True(t, want.Equal(got), "step %d: want %s got %s", i, want, got)
	}
}
