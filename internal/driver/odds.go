package driver

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AmericanToDecimal converts American odds text ("+150", "-200") to a decimal
// multiplier. Text without a sign is taken as already-decimal odds.
func AmericanToDecimal(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Zero, fmt.Errorf("empty odds text")
	}
	switch text[0] {
	case '+':
		v, err := decimal.NewFromString(text[1:])
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse odds %q: %w", text, err)
		}
		return v.Add(hundred).Div(hundred), nil
	case '-':
		v, err := decimal.NewFromString(text[1:])
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse odds %q: %w", text, err)
		}
		if v.IsZero() {
			return decimal.Zero, fmt.Errorf("invalid odds %q", text)
		}
		return hundred.Add(v).Div(v), nil
	default:
		v, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse odds %q: %w", text, err)
		}
		return v, nil
	}
}

// ParseBalance extracts a decimal amount from balance text like "$1,234.56".
func ParseBalance(text string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(text))
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty balance text")
	}
	v, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", text, err)
	}
	return v, nil
}
