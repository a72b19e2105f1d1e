package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of decimal places every stored amount keeps.
	MoneyScale = 2
	// MaxIntegerDigits matches the NUMERIC(20, 2) money columns.
	MaxIntegerDigits = 18
	// MaxAmountLength bounds the text of a requested amount.
	MaxAmountLength = 32
)

// CheckMoney rejects values the money columns cannot hold exactly. Only the
// exponent and digit count are inspected until the value is known to be
// small, so extreme exponents cost nothing.
func CheckMoney(d decimal.Decimal) error {
	exp := int(d.Exponent())
	if exp < -(MaxIntegerDigits+MoneyScale) || exp > MaxIntegerDigits || d.NumDigits()+exp > MaxIntegerDigits {
		return ErrInvalidAmount.WithMessage("amount is out of range")
	}
	if !d.Truncate(MoneyScale).Equal(d) {
		return ErrInvalidAmount.WithMessage("amount has more than two decimal places")
	}
	return nil
}

// ParseMoney parses a requested amount and applies CheckMoney.
func ParseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > MaxAmountLength {
		return decimal.Zero, ErrInvalidAmount.WithMessage("amount is too long")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount.WithMessage("amount is not a number")
	}
	if err = CheckMoney(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
