package components

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finvault-backend/internal/ai"
)

// ParseMoney turns a model-produced monetary token into a decimal. Models
// emit anything from bare numbers to "₹1,50,000.50 Cr"; everything except
// digits, the decimal point and a leading sign is stripped before parsing.
// Returns nil when no number survives.
func ParseMoney(v ai.FlexString) *decimal.Decimal {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return nil
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// FirstMoney returns the first candidate that parses to a number, in order.
func FirstMoney(candidates ...ai.FlexString) *decimal.Decimal {
	for _, c := range candidates {
		if d := ParseMoney(c); d != nil {
			return d
		}
	}
	return nil
}
