package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney_RoundsHalfUp(t *testing.T) {
	cases := map[string]string{
		"9.995":  "10.00",
		"9.994":  "9.99",
		"0.005":  "0.01",
		"12":     "12.00",
		"1.2345": "1.23",
	}
	for in, want := range cases {
		m, err := ParseMoney(in, "USD")
		require.NoError(t, err, in)
		assert.Equal(t, want, m.Amount().StringFixed(2), in)
	}
}

func TestNewMoney_NormalizesCurrency(t *testing.T) {
	a, err := MoneyFromFloat(9.99, "usd")
	require.NoError(t, err)
	b, err := MoneyFromFloat(9.99, " USD ")
	require.NoError(t, err)

	assert.Equal(t, "USD", a.Currency())
	assert.True(t, a.Equal(b))
}

func TestNewMoney_RejectsInvalidInput(t *testing.T) {
	_, err := NewMoney(decimal.Zero, "USD")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = MoneyFromFloat(-1, "USD")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = MoneyFromFloat(1, "  ")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseMoney("abc", "USD")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// rounds to 0.00
	_, err = ParseMoney("0.004", "USD")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseMoney("-0.001", "USD")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewMoney_Limits(t *testing.T) {
	m, err := ParseMoney("99999999.99", "USD")
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(MaxMoneyAmount))

	_, err = ParseMoney("99999999.995", "USD")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseMoney("1000000000", "USD")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	for _, cur := range []string{"EURO", "US", "U$D", "12A"} {
		_, err = ParseMoney("1.00", cur)
		assert.ErrorIs(t, err, ErrInvalidArgument, cur)
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	ten := mustMoney(t, 10, "EUR")
	three := mustMoney(t, 3.25, "EUR")

	sum, err := ten.Add(three)
	require.NoError(t, err)
	assert.Equal(t, "13.25 EUR", sum.String())

	diff, err := ten.Subtract(three)
	require.NoError(t, err)
	assert.Equal(t, "6.75 EUR", diff.String())

	prod, err := three.Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, "9.75 EUR", prod.String())

	// operands are untouched
	assert.Equal(t, "10.00 EUR", ten.String())
}

func TestMoney_ArithmeticFailures(t *testing.T) {
	eur := mustMoney(t, 10, "EUR")
	usd := mustMoney(t, 10, "USD")

	_, err := eur.Add(usd)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = eur.Subtract(usd)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = eur.Subtract(mustMoney(t, 11, "EUR"))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = eur.Subtract(mustMoney(t, 10, "EUR"))
	assert.True(t, errors.Is(err, ErrInvalidArgument), "zero result must be rejected")

	_, err = eur.Multiply(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = eur.Multiply(100_000_000)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	big, err := ParseMoney("99999999.99", "EUR")
	require.NoError(t, err)
	_, err = big.Add(eur)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func mustMoney(t *testing.T, amount float64, currency string) Money {
	t.Helper()
	m, err := MoneyFromFloat(amount, currency)
	require.NoError(t, err)
	return m
}
