package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	ETB Currency = "ETB" // Ethiopian Birr (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is the currency every summary card is rendered in
const DefaultCurrency = ETB

// Money is an immutable monetary amount
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromFloat creates Money from a float64.
// NaN and infinities become zero; decimal.NewFromFloat would panic on them.
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// ETBFromFloat creates Money in the default currency, sanitising non-finite input
func ETBFromFloat(amount float64) Money {
	m, _ := NewMoneyFromFloat(amount, ETB)
	return m
}

// ETBFromDecimal creates Money in the default currency
func ETBFromDecimal(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: ETB}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Float64 returns the amount as a float64 (may lose precision)
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Format renders the amount the way summary cards show it, e.g. "ETB 1,234.50"
func (m Money) Format() string {
	currency := m.currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return string(currency) + " " + groupThousands(m.amount.StringFixed(2))
}

// String implements fmt.Stringer
func (m Money) String() string {
	return m.Format()
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount    string   `json:"amount"`
		Currency  Currency `json:"currency"`
		Formatted string   `json:"formatted"`
	}{
		Amount:    m.amount.StringFixed(2),
		Currency:  m.currency,
		Formatted: m.Format(),
	})
}

func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	if len(intPart) <= 3 {
		return sign + fixed
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
