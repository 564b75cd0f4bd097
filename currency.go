package caravan

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Copper is an amount of in-game currency expressed in its minor unit.
//
// The radix is fixed: 100 copper make 1 silver and 100 silver make 1 gold.
// All ledger arithmetic is performed on Copper so that balances never drift.
type Copper int64

const (
	CopperPerSilver Copper = 100
	CopperPerGold   Copper = 100 * CopperPerSilver
)

// ErrAmountRange is returned for amounts that do not fit in a Copper.
var ErrAmountRange = errors.New("amount out of range")

// ToCopper composes a denominated value. Components are not range checked: a
// silver of 150 simply contributes 15000 copper.
func ToCopper(gold, silver, copper int64) Copper {
	return Copper(gold)*CopperPerGold + Copper(silver)*CopperPerSilver + Copper(copper)
}

// ToParts decomposes c into gold, silver and copper.
//
// Negative amounts are decomposed from their absolute value and every part
// carries the sign, so that ToCopper(ToParts(c)) == c for any c.
func ToParts(c Copper) (gold, silver, copper int64) {
	sign := int64(1)
	if c < 0 {
		sign = -1
	}
	g, s, m := partsOf(magnitude(c))
	return sign * int64(g), sign * int64(s), sign * int64(m)
}

// magnitude returns |c|, which does not fit in Copper for math.MinInt64.
func magnitude(c Copper) uint64 {
	if c < 0 {
		return -uint64(c)
	}
	return uint64(c)
}

func partsOf(v uint64) (gold, silver, copper uint64) {
	return v / uint64(CopperPerGold), v % uint64(CopperPerGold) / uint64(CopperPerSilver), v % uint64(CopperPerSilver)
}

// Format returns a compact representation of c, like "1з 2с 3м".
//
// Zero denominations are omitted, except copper which is printed when nothing
// else is, so the result is never empty.
func Format(c Copper) string {
	gold, silver, copper := partsOf(magnitude(c))
	parts := make([]string, 0, 3)
	if gold > 0 {
		parts = append(parts, fmt.Sprintf("%dз", gold))
	}
	if silver > 0 {
		parts = append(parts, fmt.Sprintf("%dс", silver))
	}
	if copper > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dм", copper))
	}
	if c < 0 {
		return "-" + strings.Join(parts, " ")
	}
	return strings.Join(parts, " ")
}

// String implements fmt.Stringer using Format.
func (c Copper) String() string { return Format(c) }

// Gold returns the gold-equivalent value of c, e.g. 1.5 for 1з 50с.
func (c Copper) Gold() decimal.Decimal {
	return decimal.New(int64(c), -4)
}

// denominations maps the accepted suffixes to their value in copper.
var denominations = map[string]Copper{
	"з": CopperPerGold,
	"g": CopperPerGold,
	"с": CopperPerSilver,
	"s": CopperPerSilver,
	"м": 1,
	"c": 1,
}

// ParseCopper parses an amount of copper.
//
// It accepts either a bare integer (copper) or space separated denominated
// parts like "12з 5с 30м" or "12g 5s 30c", which is the Format output.
func ParseCopper(s string) (Copper, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n == math.MinInt64 {
			return 0, fmt.Errorf("invalid amount %q: %w", s, ErrAmountRange)
		}
		return Copper(n), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("invalid amount %q: %w", s, ErrAmountRange)
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = strings.TrimSpace(s[1:])
	}

	var total Copper
	for _, field := range strings.Fields(s) {
		var unit Copper
		var digits string
		for suffix, v := range denominations {
			if strings.HasSuffix(field, suffix) {
				unit, digits = v, strings.TrimSuffix(field, suffix)
				break
			}
		}
		if unit == 0 {
			return 0, fmt.Errorf("invalid amount %q: part %q has no denomination", s, field)
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("invalid amount %q: %w", s, ErrAmountRange)
		}
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid amount %q: part %q is not a number", s, field)
		}
		if Copper(n) > math.MaxInt64/unit || total > math.MaxInt64-Copper(n)*unit {
			return 0, fmt.Errorf("invalid amount %q: %w", s, ErrAmountRange)
		}
		total += Copper(n) * unit
	}
	if neg {
		total = -total
	}
	return total, nil
}
