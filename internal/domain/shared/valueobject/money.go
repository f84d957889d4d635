// Package valueobject holds immutable values shared by the domain packages.
package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	VND Currency = "VND"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency applies when an order carries no currency
const DefaultCurrency = VND

// ErrCurrencyMismatch is returned when two amounts in different currencies are combined
var ErrCurrencyMismatch = errors.New("currency mismatch")

// IsValid reports whether the currency is supported
func (c Currency) IsValid() bool {
	switch c {
	case VND, USD, EUR:
		return true
	}
	return false
}

// MinorUnits is the number of decimal places amounts are rounded to.
// VND has no minor unit.
func (c Currency) MinorUnits() int32 {
	if c == VND {
		return 0
	}
	return 2
}

// Money is an amount in a currency. Operations return new values.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney validates the currency and builds a Money
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString parses a decimal amount
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// MoneyOf wraps an amount that is already known to be valid.
// An empty currency falls back to DefaultCurrency.
func MoneyOf(amount decimal.Decimal, currency Currency) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// Zero returns nothing in the given currency
func Zero(currency Currency) Money {
	return MoneyOf(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

func (m Money) sameCurrency(op string, other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("%w: cannot %s %s and %s", ErrCurrencyMismatch, op, m.currency, other.currency)
	}
	return nil
}

// Add returns m + other
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency("add", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd is Add for amounts taken from the same order. It panics on a currency mismatch.
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// Subtract returns m - other
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency("subtract", other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MustSubtract is Subtract for amounts taken from the same order
func (m Money) MustSubtract(other Money) Money {
	diff, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return diff
}

// Multiply scales the amount by factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// MultiplyByInt scales the amount by a quantity
func (m Money) MultiplyByInt(quantity int64) Money {
	return m.Multiply(decimal.NewFromInt(quantity))
}

// Ratio returns m / other as a plain decimal with 16 digits of precision
func (m Money) Ratio(other Money) (decimal.Decimal, error) {
	if err := m.sameCurrency("divide", other); err != nil {
		return decimal.Zero, err
	}
	if other.amount.IsZero() {
		return decimal.Zero, errors.New("cannot divide by zero")
	}
	return m.amount.DivRound(other.amount, 16), nil
}

// NonNegative clamps the amount at zero
func (m Money) NonNegative() Money {
	if m.amount.IsNegative() {
		return Zero(m.currency)
	}
	return m
}

// Cap returns the smaller of m and limit
func (m Money) Cap(limit Money) Money {
	if m.amount.GreaterThan(limit.amount) {
		return Money{amount: limit.amount, currency: m.currency}
	}
	return m
}

// Rounded rounds half away from zero to the currency's minor units
func (m Money) Rounded() Money {
	return Money{amount: m.amount.Round(m.currency.MinorUnits()), currency: m.currency}
}

// Equals compares amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(m.currency.MinorUnits()) + " " + string(m.currency)
}

// MarshalJSON writes the amount as a fixed-point string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(m.currency.MinorUnits()),
		Currency: m.currency,
	})
}
