package caravan

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a real-world currency amount, like the dollars received for a coin
// sale. In-game amounts are Copper, never Money.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M creates Money from a decimal value in the major unit of currency.
func M(value decimal.Decimal, currency string) Money {
	return Money{value: value, cur: currency}
}

// USD is a helper to create dollars from a decimal.
func USD(value decimal.Decimal) Money { return M(value, "USD") }

// currency returns the go-money currency definition.
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the value formatted by its currency conventions, e.g. "$12.50".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
