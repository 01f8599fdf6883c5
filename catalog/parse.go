package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/model"
)

// Record separators of the warehouse format: "Name: Price;Name: Price: Stock".
const (
	RecordSeparator = ";"
	FieldSeparator  = ":"
)

// Record is one parsed inventory entry.
type Record struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	HasStock bool
}

// Parse splits raw into records. Malformed records are skipped; each one is
// reported as a *model.ParseError inside the joined error. The returned
// records are valid even when err is non-nil.
func Parse(raw string) ([]Record, error) {
	var (
		records []Record
		errs    []error
	)
	for i, chunk := range strings.Split(raw, RecordSeparator) {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		rec, err := parseRecord(text)
		if err != nil {
			errs = append(errs, &model.ParseError{Index: i, Record: text, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

func parseRecord(text string) (Record, error) {
	fields := strings.Split(text, FieldSeparator)
	if len(fields) < 2 {
		return Record{}, fmt.Errorf("missing %q delimiter", FieldSeparator)
	}

	// "Name: Price: Stock" when the last two fields are numeric.
	if len(fields) >= 3 {
		rawStock := strings.TrimSpace(fields[len(fields)-1])
		stock, stockErr := strconv.Atoi(rawStock)
		price, priceErr := decimal.NewFromString(strings.TrimSpace(fields[len(fields)-2]))
		if priceErr == nil && errors.Is(stockErr, strconv.ErrRange) {
			return Record{}, fmt.Errorf("stock %q out of range", rawStock)
		}
		if stockErr == nil && priceErr == nil {
			name := strings.TrimSpace(strings.Join(fields[:len(fields)-2], FieldSeparator))
			return buildRecord(name, price, stock, true)
		}
	}

	name := strings.TrimSpace(strings.Join(fields[:len(fields)-1], FieldSeparator))
	rawPrice := strings.TrimSpace(fields[len(fields)-1])
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return Record{}, fmt.Errorf("non-numeric price %q", rawPrice)
	}
	return buildRecord(name, price, 0, false)
}

func buildRecord(name string, price decimal.Decimal, stock int, hasStock bool) (Record, error) {
	if name == "" {
		return Record{}, errors.New("empty item name")
	}
	if price.IsNegative() {
		return Record{}, fmt.Errorf("negative price %s", price)
	}
	if stock < 0 {
		return Record{}, fmt.Errorf("negative stock %d", stock)
	}
	return Record{Name: name, Price: price, Stock: stock, HasStock: hasStock}, nil
}
