package advisor

import (
	"fmt"
	"strings"

	"github.com/etnz/caravan"
)

// Window is the number of most recent records described to the model.
const Window = 20

// Snapshot is a copy of the ledger state an advice request works on.
//
// It is captured when the request is issued, later mutations of the session
// do not affect it.
type Snapshot struct {
	Trades    []caravan.Trade
	Expenses  []caravan.Expense
	CoinSales []caravan.CoinSale
	Balance   caravan.Copper
}

// SnapshotOf captures the current shift of a session.
func SnapshotOf(s *caravan.Session) Snapshot {
	return Snapshot{
		Trades:    s.CurrentTrades(),
		Expenses:  s.CurrentExpenses(),
		CoinSales: s.CurrentCoinSales(),
		Balance:   s.Balance(),
	}
}

// Empty reports whether there is nothing to talk about.
func (s Snapshot) Empty() bool {
	return len(s.Trades)+len(s.Expenses)+len(s.CoinSales) == 0
}

// Summary describes the last n records, oldest first, one per line.
func (s Snapshot) Summary(n int) string {
	log := caravan.Recent(caravan.History(s.Trades, s.Expenses, s.CoinSales), n)
	var b strings.Builder
	for _, r := range log {
		b.WriteString(describe(r))
		b.WriteByte('\n')
	}
	return b.String()
}

func describe(r caravan.Record) string {
	on := r.When().Format("2006-01-02 15:04")
	switch v := r.(type) {
	case caravan.Trade:
		line := fmt.Sprintf("%s trade %s: %d packs at %s each, profit %s", on, v.Route(), v.PacksCount, v.PricePerPack, v.Profit)
		if m, ok := v.Duration(); ok {
			line += fmt.Sprintf(", %d min", m)
		}
		return line
	case caravan.Expense:
		return fmt.Sprintf("%s expense %q: %s", on, v.Label, v.Amount)
	case caravan.CoinSale:
		return fmt.Sprintf("%s coin sale: %s for %s", on, v.Amount, v.Proceeds())
	}
	return fmt.Sprintf("%s %s", on, r.What())
}
