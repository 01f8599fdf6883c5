package model

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = "NGN"

var printer = message.NewPrinter(language.English)

// groupChunk is the widest power of ten whose multiples still fit in int64.
const groupChunk = 1_000_000_000_000_000_000

// FormatCurrency renders amount as "NGN 1,234.50". Rounding happens here only.
func FormatCurrency(code string, amount decimal.Decimal) string {
	if code == "" {
		code = DefaultCurrency
	}
	fixed := amount.StringFixed(2)
	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	return code + " " + sign + groupDigits(whole) + "." + frac
}

// groupDigits inserts thousands separators into a string of decimal digits
// of any length. Chunks of 18 digits are formatted with a leading 1 so their
// zeros survive, then the 1 is dropped.
func groupDigits(digits string) string {
	if len(digits) <= 18 {
		n, _ := strconv.ParseInt(digits, 10, 64)
		return printer.Sprintf("%d", n)
	}
	head, tail := digits[:len(digits)-18], digits[len(digits)-18:]
	n, _ := strconv.ParseInt(tail, 10, 64)
	return groupDigits(head) + printer.Sprintf("%d", n+groupChunk)[1:]
}

// FormatBalance renders a balance for storage: two fraction digits, no grouping.
func FormatBalance(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
