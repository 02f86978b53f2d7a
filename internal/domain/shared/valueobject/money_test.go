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
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestNewMoneyUSDFromString(t *testing.T) {
	m, err := NewMoneyUSDFromString("19.99")
	require.NoError(t, err)
	assert.Equal(t, USD, m.Currency())
	assert.Equal(t, "19.99", m.StringFixed(2))
}

func TestZeroUSD(t *testing.T) {
	m := ZeroUSD()
	assert.True(t, m.IsZero())
	assert.Equal(t, USD, m.Currency())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		a := NewMoneyUSD(decimal.NewFromFloat(10.50))
		b := NewMoneyUSD(decimal.NewFromFloat(4.50))
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(15.00)))
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		a := NewMoneyUSD(decimal.NewFromInt(10))
		b, _ := NewMoney(decimal.NewFromInt(10), EUR)
		_, err := a.Add(b)
		assert.Error(t, err)
	})
}

func TestMoneySubtract(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromFloat(10.00))
	b := NewMoneyUSD(decimal.NewFromFloat(3.25))
	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "6.75", diff.StringFixed(2))
}

func TestMoneyMultiplyByInt(t *testing.T) {
	unit := NewMoneyUSD(decimal.NewFromFloat(9.99))
	total := unit.MultiplyByInt(3)
	assert.Equal(t, "29.97", total.StringFixed(2))
}

func TestMoneyComparisons(t *testing.T) {
	small := NewMoneyUSD(decimal.NewFromInt(5))
	big := NewMoneyUSD(decimal.NewFromInt(50))

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)

	t.Run("mixed currency comparison fails", func(t *testing.T) {
		eur, _ := NewMoney(decimal.NewFromInt(5), EUR)
		_, err := small.LessThan(eur)
		assert.Error(t, err)
	})
}

func TestMoneyEquals(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromFloat(12.30))
	b, _ := NewMoneyFromString("12.3", USD)
	assert.True(t, a.Equals(b))

	c, _ := NewMoney(decimal.NewFromFloat(12.30), EUR)
	assert.False(t, a.Equals(c))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(42.42))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.42","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans string amount", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("15.75"))
		assert.Equal(t, "15.75", m.StringFixed(2))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(3.14))
	})
}
