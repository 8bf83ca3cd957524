package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// MaxMoneyAmount is the largest amount a price column can hold.
var MaxMoneyAmount = decimal.RequireFromString("99999999.99")

// Money is an immutable positive amount in a single currency. The zero value
// carries no currency and stands for "no price".
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney rounds the amount half-up to two decimals and requires the result
// to be strictly positive and at most MaxMoneyAmount. The currency is trimmed,
// upper-cased and must be a three-letter code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	rounded := amount.Round(moneyScale)
	if !rounded.IsPositive() {
		return Money{}, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if rounded.GreaterThan(MaxMoneyAmount) {
		return Money{}, fmt.Errorf("%w: amount cannot exceed %s", ErrInvalidArgument, MaxMoneyAmount.StringFixed(moneyScale))
	}
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		return Money{}, fmt.Errorf("%w: currency cannot be empty", ErrInvalidArgument)
	}
	if !isCurrencyCode(cur) {
		return Money{}, fmt.Errorf("%w: currency %q is not a three-letter code", ErrInvalidArgument, cur)
	}
	return Money{amount: rounded, currency: cur}, nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

func MoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// ParseMoney builds Money from a decimal string such as "19.99".
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("%w: malformed amount %q", ErrInvalidArgument, amount)
	}
	return NewMoney(d, currency)
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.currency == ""
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", ErrInvalidArgument, other.currency, m.currency)
	}
	return NewMoney(m.amount.Add(other.amount), m.currency)
}

// Subtract fails when currencies differ or when the result would not be
// strictly positive.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", ErrInvalidArgument, other.currency, m.currency)
	}
	result, err := NewMoney(m.amount.Sub(other.amount), m.currency)
	if err != nil {
		return Money{}, fmt.Errorf("%w: result must be positive", ErrInvalidArgument)
	}
	return result, nil
}

func (m Money) Multiply(n int) (Money, error) {
	if n <= 0 {
		return Money{}, fmt.Errorf("%w: multiplier must be positive", ErrInvalidArgument)
	}
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(n))), m.currency)
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	if m.IsZero() {
		return ""
	}
	return m.amount.StringFixed(moneyScale) + " " + m.currency
}
