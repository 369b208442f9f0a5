package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"two places", "43.49", BRL, 4349},
		{"rounds half up", "10.005", BRL, 1001},
		{"whole number", "500", BRL, 50000},
		{"unknown currency falls back to BRL", "1.50", "XXX-not-real", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			m := NewFromDecimal(d, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestFromDecimal_OutOfRange(t *testing.T) {
	huge := decimal.RequireFromString("99999999999999999999999.99")

	_, err := FromDecimal(huge, BRL)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Panics(t, func() { NewFromDecimal(huge, BRL) })

	m, err := FromDecimal(decimal.RequireFromString("92233720368547758.07"), BRL)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), m.Amount())

	_, err = FromDecimal(decimal.RequireFromString("92233720368547758.08"), BRL)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMoney_Add(t *testing.T) {
	t.Run("same currency", func(t *testing.T) {
		sum, err := New(1000, BRL).Add(New(1750, BRL))
		require.NoError(t, err)
		assert.Equal(t, int64(2750), sum.Amount())
		assert.Equal(t, "27.50", sum.String())
	})

	t.Run("nil counts as zero", func(t *testing.T) {
		var m *Money
		sum, err := m.Add(New(5, BRL))
		require.NoError(t, err)
		assert.Equal(t, int64(5), sum.Amount())
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := New(1, BRL).Add(New(1, "EUR"))
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})
}

func TestMoney_AddIsExact(t *testing.T) {
	// 0.10 added ten times drifts in float64; in centavos it never does.
	total := Zero(BRL)
	for range 10 {
		total = total.MustAdd(NewFromDecimal(decimal.RequireFromString("0.10"), BRL))
	}
	assert.Equal(t, int64(100), total.Amount())
	assert.True(t, total.ToDecimal().Equal(decimal.RequireFromString("1.00")))
}

func TestMoney_Compare(t *testing.T) {
	assert.Equal(t, -1, New(1, BRL).Compare(New(2, BRL)))
	assert.Equal(t, 0, New(2, BRL).Compare(New(2, BRL)))
	assert.Equal(t, 1, New(3, BRL).Compare(New(2, BRL)))
	assert.True(t, New(0, BRL).IsZero())
	assert.True(t, New(-1, BRL).IsNegative())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "0.00", (*Money)(nil).String())
	assert.Equal(t, "43.49", New(4349, BRL).String())
	assert.Equal(t, "0.05", New(5, BRL).String())
}
