package catalog

import (
	"fmt"
	"strings"
)

// ZeroStockPolicy decides what happens to an item whose stock reaches zero.
type ZeroStockPolicy string

const (
	// ZeroStockKeep leaves the item listed and searchable but unpurchasable.
	ZeroStockKeep ZeroStockPolicy = "keep"
	// ZeroStockRemove drops the item from the catalog.
	ZeroStockRemove ZeroStockPolicy = "remove"
)

// ParseZeroStockPolicy accepts "keep" or "remove" (case-insensitive).
func ParseZeroStockPolicy(s string) (ZeroStockPolicy, error) {
	switch p := ZeroStockPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ZeroStockKeep, ZeroStockRemove:
		return p, nil
	default:
		return "", fmt.Errorf("unknown zero stock policy %q", s)
	}
}

// Defaults
const (
	DefaultStock           = 100
	DefaultSearchCacheSize = 128
)

// Options configures a Catalog.
type Options struct {
	// DefaultStock is used for records that carry no stock field.
	DefaultStock int
	// EmptyQueryMatchesAll makes a blank search return every item instead of none.
	EmptyQueryMatchesAll bool
	ZeroStock            ZeroStockPolicy
	// SearchCacheSize bounds the compiled-query cache. Zero disables it.
	SearchCacheSize int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DefaultStock:    DefaultStock,
		ZeroStock:       ZeroStockKeep,
		SearchCacheSize: DefaultSearchCacheSize,
	}
}
