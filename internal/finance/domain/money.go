package domain

import "github.com/shopspring/decimal"

// Money is a currency-tagged decimal amount. Amounts are never floats.
// Arithmetic assumes both operands carry the same currency; the ledger
// enforces this at the boundary by rejecting transactions whose currency
// differs from their account's.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func NewMoneyZero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// ParseMoney validates and parses a decimal string.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: d, Currency: currency}, nil
}

// Add assumes other carries the same currency. The currency tag falls back
// to other's when the receiver is an untagged zero value.
func (m Money) Add(other Money) Money {
	currency := m.Currency
	if currency == "" {
		currency = other.Currency
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: currency}
}

// Sub assumes other carries the same currency, like Add.
func (m Money) Sub(other Money) Money {
	currency := m.Currency
	if currency == "" {
		currency = other.Currency
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: currency}
}

func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}
