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
		m, err := NewMoney(decimal.NewFromFloat(100.50), BRL)
		require.NoError(t, err)
		assert.Equal(t, BRL, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("returns error for malformed currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "real")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("1234.5", BRL)
	require.NoError(t, err)
	assert.Equal(t, "1234.50", m.StringFixed(2))

	_, err = NewMoneyFromString("abc", BRL)
	assert.Error(t, err)
}

func TestMoney_Add(t *testing.T) {
	a := NewMoneyBRL(decimal.NewFromInt(10))
	b := NewMoneyBRL(decimal.RequireFromString("0.5"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.50 BRL", sum.String())

	usd, _ := NewMoney(decimal.NewFromInt(1), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "R$", BRL.Symbol())
	assert.Equal(t, "R$", Currency("").Symbol())
	assert.Equal(t, "CHF", Currency("CHF").Symbol())
	assert.Equal(t, BRL, Currency("").OrDefault())
	assert.True(t, Currency("JPY").IsValid())
	assert.False(t, Currency("jp").IsValid())
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyBRL(decimal.RequireFromString("1500.5"))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1500.5","currency":"BRL"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"42"}`), &decoded))
	assert.Equal(t, BRL, decoded.Currency())
	assert.True(t, decoded.Amount().Equal(decimal.NewFromInt(42)))
}
