package payment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparsable means the amount string did not normalize to a number.
// Callers skip the message; the raw string is preserved for logging.
var ErrUnparsable = errors.New("unparsable amount")

var currencyStrip = regexp.MustCompile(`[R$\s]`)

// ParseAmount converts a localized amount string ("R$ 1.234,56", "10,50",
// "7") into a decimal value. The second return is the trimmed original,
// kept even on failure.
//
// Separator rules: with both "." and ",", the period is a thousands
// separator and the comma the decimal mark. A lone comma is a decimal mark.
// Otherwise the string is already in "." decimal notation.
func ParseAmount(raw string) (decimal.Decimal, string, error) {
	trimmed := strings.TrimSpace(raw)

	s := currencyStrip.ReplaceAllString(trimmed, "")

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, trimmed, fmt.Errorf("%w: %q", ErrUnparsable, trimmed)
	}
	if d.IsNegative() {
		return decimal.Zero, trimmed, fmt.Errorf("%w: negative value %q", ErrUnparsable, trimmed)
	}

	return d, trimmed, nil
}

// CreditsFor converts a monetary amount into whole credits: floor of the
// amount, but every qualifying purchase grants at least one credit.
func CreditsFor(amount decimal.Decimal) int64 {
	credits := amount.IntPart()
	if credits < 1 {
		return 1
	}
	return credits
}
