// Package money provides currency-safe arithmetic for report values using
// integer minor units (centavos for BRL). Values read from the loss report are
// parsed as decimals and converted once; every sum after that is integer math.
package money

import (
	"errors"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// BRL is the only currency Lince reports are printed in (ISO-4217).
const BRL = "BRL"

// DefaultCurrency is used whenever a caller does not name one.
const DefaultCurrency = BRL

var (
	// ErrCurrencyMismatch is returned when adding values in different currencies.
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	// ErrOutOfRange is returned when an amount does not fit in int64 minor units.
	ErrOutOfRange = errors.New("money: amount out of range")
)

// Money is a monetary value with currency, stored in minor units.
type Money struct {
	m *money.Money
}

// New creates Money from minor units (centavos).
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// Zero returns a zero value in the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// NewFromDecimal converts a decimal amount to Money, rounding half away from
// zero to the currency's minor unit. It panics when the amount is out of
// range; use FromDecimal for values read from a report.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	m, err := FromDecimal(amount, currencyCode)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal is NewFromDecimal for untrusted amounts: it fails with
// ErrOutOfRange instead of wrapping around int64.
func FromDecimal(amount decimal.Decimal, currencyCode string) (*Money, error) {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currencyCode = DefaultCurrency
		currency = money.GetCurrency(currencyCode)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0)
	if !cents.BigInt().IsInt64() {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, amount.String())
	}

	return New(cents.IntPart(), currencyCode), nil
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Add returns m + other. A nil operand counts as zero.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || m.m == nil {
		return other, nil
	}
	if other == nil || other.m == nil {
		return m, nil
	}

	result, err := m.m.Add(other.m)
	if err != nil {
		return nil, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}
	return &Money{m: result}, nil
}

// MustAdd is Add for callers that only ever hold one currency.
func (m *Money) MustAdd(other *Money) *Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Compare returns -1 if m < other, 0 if equal, 1 if m > other.
func (m *Money) Compare(other *Money) int {
	a, b := m.Amount(), other.Amount()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equals reports whether both hold the same amount.
func (m *Money) Equals(other *Money) bool {
	return m.Compare(other) == 0
}

// ToDecimal converts back to a decimal with the currency's fraction digits.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	return decimal.New(m.m.Amount(), -int32(currency.Fraction))
}

// String returns the plain decimal amount, e.g. "1234.56".
func (m *Money) String() string {
	if m == nil || m.m == nil {
		return "0.00"
	}
	return m.ToDecimal().StringFixed(int32(m.m.Currency().Fraction))
}

// Display returns the amount formatted with the currency's own grapheme and
// separators, e.g. "R$1.234,56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return money.New(0, DefaultCurrency).Display()
	}
	return m.m.Display()
}

// ToFloat64 is for spreadsheet cells only; never sum the result.
func (m *Money) ToFloat64() float64 {
	return m.ToDecimal().InexactFloat64()
}
