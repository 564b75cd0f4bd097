package caravan

import (
	"fmt"
	"slices"
)

// History merges the three collections into a single log, newest first.
//
// If kinds are given, only records of those kinds are kept.
func History(trades []Trade, expenses []Expense, coinSales []CoinSale, kinds ...Kind) []Record {
	accept := func(k Kind) bool { return len(kinds) == 0 || slices.Contains(kinds, k) }

	log := make([]Record, 0, len(trades)+len(expenses)+len(coinSales))
	if accept(KindSale) {
		for _, t := range trades {
			log = append(log, t)
		}
	}
	if accept(KindExpense) {
		for _, e := range expenses {
			log = append(log, e)
		}
	}
	if accept(KindCoinSale) {
		for _, s := range coinSales {
			log = append(log, s)
		}
	}
	slices.SortStableFunc(log, func(a, b Record) int { return b.When().Compare(a.When()) })
	return log
}

// Recent returns the n most recent records of log in chronological order.
// log must be sorted newest first as returned by History.
func Recent(log []Record, n int) []Record {
	if n >= 0 && len(log) > n {
		log = log[:n]
	}
	recent := slices.Clone(log)
	slices.Reverse(recent)
	return recent
}

// ParseKind parses a record kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSale, KindExpense, KindCoinSale:
		return k, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}
