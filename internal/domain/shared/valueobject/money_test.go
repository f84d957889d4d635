package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(400000), VND)
		require.NoError(t, err)
		assert.Equal(t, VND, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(400000)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", VND)
		assert.Error(t, err)
	})
}

func TestMoneyOf(t *testing.T) {
	m := MoneyOf(decimal.NewFromInt(5), "")
	assert.Equal(t, DefaultCurrency, m.Currency())
}

func TestCurrency(t *testing.T) {
	assert.True(t, VND.IsValid())
	assert.False(t, Currency("XXX").IsValid())
	assert.Equal(t, int32(0), VND.MinorUnits())
	assert.Equal(t, int32(2), USD.MinorUnits())
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyOf(decimal.NewFromInt(1000), VND)
	b := MoneyOf(decimal.NewFromInt(300), VND)

	t.Run("add and subtract", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(1300)))

		diff, err := b.Subtract(a)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
		assert.True(t, diff.NonNegative().IsZero())
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(MoneyOf(decimal.NewFromInt(1), USD))
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
		assert.Panics(t, func() { a.MustSubtract(MoneyOf(decimal.NewFromInt(1), USD)) })
	})

	t.Run("multiply", func(t *testing.T) {
		assert.True(t, b.MultiplyByInt(3).Amount().Equal(decimal.NewFromInt(900)))
	})

	t.Run("ratio", func(t *testing.T) {
		r, err := b.Ratio(a)
		require.NoError(t, err)
		assert.True(t, r.Equal(decimal.RequireFromString("0.3")))

		_, err = a.Ratio(Zero(VND))
		assert.Error(t, err)
	})

	t.Run("cap", func(t *testing.T) {
		assert.True(t, a.Cap(b).Equals(b))
		assert.True(t, b.Cap(a).Equals(b))
	})
}

func TestMoneyRounded(t *testing.T) {
	vnd := MoneyOf(decimal.RequireFromString("33333.3333"), VND)
	assert.True(t, vnd.Rounded().Amount().Equal(decimal.NewFromInt(33333)))

	usd := MoneyOf(decimal.RequireFromString("10.005"), USD)
	assert.Equal(t, "10.01 USD", usd.Rounded().String())
}

func TestMoneyJSON(t *testing.T) {
	m := MoneyOf(decimal.NewFromInt(300000), VND)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"300000","currency":"VND"}`, string(data))
}
