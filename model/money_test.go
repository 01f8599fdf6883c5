package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "NGN 245,000.00", FormatCurrency("NGN", decimal.NewFromInt(245000)))
	assert.Equal(t, "USD 0.50", FormatCurrency("USD", decimal.RequireFromString("0.5")))
	assert.Equal(t, "NGN 10.00", FormatCurrency("", decimal.NewFromInt(10)))
	assert.Equal(t, "NGN -1,250.75", FormatCurrency("NGN", decimal.RequireFromString("-1250.745")))
}

func TestFormatCurrencyKeepsLargeAmountsExact(t *testing.T) {
	for raw, want := range map[string]string{
		"9007199254740993.01":         "NGN 9,007,199,254,740,993.01",
		"12345678901234567890123.456": "NGN 12,345,678,901,234,567,890,123.46",
		"1000000000000000000000":      "NGN 1,000,000,000,000,000,000,000.00",
		"999999999999999999":          "NGN 999,999,999,999,999,999.00",
	} {
		assert.Equal(t, want, FormatCurrency("NGN", decimal.RequireFromString(raw)), raw)
	}
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "55000.00", FormatBalance(decimal.NewFromInt(55000)))
	assert.Equal(t, "0.10", FormatBalance(decimal.RequireFromString("0.1")))
}
