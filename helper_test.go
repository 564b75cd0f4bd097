package caravan

import (
	"time"

	"github.com/shopspring/decimal"
)

// at is a helper for test to create instants at minute precision on a fixed day.
func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-01 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

// trade is a helper for test to create a trade without caring about its id.
func trade(on string, from, to string, packs int, price Copper) Trade {
	return NewTrade(at(on), from, to, packs, price)
}

// timed is a helper for test to create a trade recorded from a trip.
func timed(t Trade, minutes int) Trade {
	t.DurationMinutes = &minutes
	return t
}

// fixedClock returns a clock that can be moved forward.
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }
