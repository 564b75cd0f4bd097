package caravan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/caravan/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Storage keys.
const (
	KeyTrades          = "aoc_trades"
	KeyExpenses        = "aoc_expenses"
	KeyCoinSales       = "aoc_coin_sales"
	KeyCustomNodes     = "aoc_custom_nodes"
	KeyDayStartTime    = "aoc_day_start_time"
	KeyStartingBalance = "aoc_starting_balance"
	KeyActiveTrip      = "aoc_active_trip"
)

// Ledger is the record store. It exclusively owns the three record
// collections and the custom nodes.
//
// Records are kept in insertion order. Every mutation marks the affected
// collection as dirty, Save then persists all dirty collections at once.
type Ledger struct {
	trades    []Trade
	expenses  []Expense
	coinSales []CoinSale
	nodes     []Node // overlay only, defaults are never stored

	dirty map[string]bool
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{dirty: make(map[string]bool)}
}

func (l *Ledger) touch(key string) { l.dirty[key] = true }

// Trades returns all trades in insertion order.
func (l *Ledger) Trades() []Trade { return slices.Clone(l.trades) }

// Expenses returns all expenses in insertion order.
func (l *Ledger) Expenses() []Expense { return slices.Clone(l.expenses) }

// CoinSales returns all coin sales in insertion order.
func (l *Ledger) CoinSales() []CoinSale { return slices.Clone(l.coinSales) }

// AddTrade appends a trade.
func (l *Ledger) AddTrade(t Trade) {
	l.trades = append(l.trades, t)
	l.touch(KeyTrades)
}

// AddExpense appends an expense.
func (l *Ledger) AddExpense(e Expense) {
	l.expenses = append(l.expenses, e)
	l.touch(KeyExpenses)
}

// AddCoinSale appends a coin sale.
func (l *Ledger) AddCoinSale(s CoinSale) {
	l.coinSales = append(l.coinSales, s)
	l.touch(KeyCoinSales)
}

// DeleteTrade removes the trade with this id. It reports whether a trade was removed.
func (l *Ledger) DeleteTrade(id string) bool {
	var ok bool
	l.trades, ok = deleteByKey(l.trades, id)
	if ok {
		l.touch(KeyTrades)
	}
	return ok
}

// DeleteExpense removes the expense with this id. It reports whether an expense was removed.
func (l *Ledger) DeleteExpense(id string) bool {
	var ok bool
	l.expenses, ok = deleteByKey(l.expenses, id)
	if ok {
		l.touch(KeyExpenses)
	}
	return ok
}

// DeleteCoinSale removes the coin sale with this id. It reports whether a sale was removed.
func (l *Ledger) DeleteCoinSale(id string) bool {
	var ok bool
	l.coinSales, ok = deleteByKey(l.coinSales, id)
	if ok {
		l.touch(KeyCoinSales)
	}
	return ok
}

// UpdateTrade replaces the trade with the same id, recomputing its profit.
// Unknown ids are ignored.
//
// The id, timestamp, type and trip duration are set once when the trade is
// recorded: the stored ones are kept.
func (l *Ledger) UpdateTrade(t Trade) bool {
	i := indexByKey(l.trades, t.ID)
	if i < 0 {
		return false
	}
	t.baseRecord = l.trades[i].baseRecord
	t.DurationMinutes = l.trades[i].DurationMinutes
	t.Profit = t.computeProfit()
	l.trades[i] = t
	l.touch(KeyTrades)
	return true
}

// UpdateExpense replaces the expense with the same id, keeping its timestamp.
// Unknown ids are ignored.
func (l *Ledger) UpdateExpense(e Expense) bool {
	i := indexByKey(l.expenses, e.ID)
	if i < 0 {
		return false
	}
	e.baseRecord = l.expenses[i].baseRecord
	l.expenses[i] = e
	l.touch(KeyExpenses)
	return true
}

// UpdateCoinSale replaces the coin sale with the same id, keeping its
// timestamp. Unknown ids are ignored.
func (l *Ledger) UpdateCoinSale(s CoinSale) bool {
	i := indexByKey(l.coinSales, s.ID)
	if i < 0 {
		return false
	}
	s.baseRecord = l.coinSales[i].baseRecord
	l.coinSales[i] = s
	l.touch(KeyCoinSales)
	return true
}

// Find returns the record with this id, whatever its kind.
func (l *Ledger) Find(id string) (Record, bool) {
	if i := indexByKey(l.trades, id); i >= 0 {
		return l.trades[i], true
	}
	if i := indexByKey(l.expenses, id); i >= 0 {
		return l.expenses[i], true
	}
	if i := indexByKey(l.coinSales, id); i >= 0 {
		return l.coinSales[i], true
	}
	return nil, false
}

// Nodes returns the default nodes merged with the custom ones, sorted by name.
func (l *Ledger) Nodes() []Node { return MergeNodes(DefaultNodes, l.nodes) }

// CustomNodes returns the nodes added on top of the defaults.
func (l *Ledger) CustomNodes() []Node { return slices.Clone(l.nodes) }

// HasNode reports whether name is a known node.
func (l *Ledger) HasNode(name string) bool {
	return containsNode(DefaultNodes, name) || containsNode(l.nodes, name)
}

// AddNode adds a custom node. It reports false if the name already exists.
func (l *Ledger) AddNode(name, region string) (Node, bool) {
	if l.HasNode(name) {
		return Node{}, false
	}
	n := Node{ID: uuid.NewString(), Name: name, Region: region}
	l.nodes = append(l.nodes, n)
	l.touch(KeyCustomNodes)
	return n, true
}

// replace swaps whole collections, used by Import.
func (l *Ledger) replaceTrades(v []Trade)       { l.trades = v; l.touch(KeyTrades) }
func (l *Ledger) replaceExpenses(v []Expense)   { l.expenses = v; l.touch(KeyExpenses) }
func (l *Ledger) replaceCoinSales(v []CoinSale) { l.coinSales = v; l.touch(KeyCoinSales) }
func (l *Ledger) replaceNodes(v []Node) {
	// keep the dedup invariant even for imported overlays.
	var overlay []Node
	for _, n := range v {
		if !containsNode(DefaultNodes, n.Name) && !containsNode(overlay, n.Name) {
			overlay = append(overlay, n)
		}
	}
	l.nodes = overlay
	l.touch(KeyCustomNodes)
}

// Load reads all collections from the backend.
//
// Missing keys leave the collection empty. Malformed data is logged and
// treated as absent. Only backend failures are returned.
func (l *Ledger) Load(ctx context.Context, b storage.Backend) error {
	var errs error
	errs = errors.Join(errs, loadKey(ctx, b, KeyTrades, &l.trades))
	errs = errors.Join(errs, loadKey(ctx, b, KeyExpenses, &l.expenses))
	errs = errors.Join(errs, loadKey(ctx, b, KeyCoinSales, &l.coinSales))
	errs = errors.Join(errs, loadKey(ctx, b, KeyCustomNodes, &l.nodes))
	return errs
}

// Save writes every dirty collection to the backend.
func (l *Ledger) Save(ctx context.Context, b storage.Backend) error {
	values := map[string]any{
		KeyTrades:      nonNil(l.trades),
		KeyExpenses:    nonNil(l.expenses),
		KeyCoinSales:   nonNil(l.coinSales),
		KeyCustomNodes: nonNil(l.nodes),
	}
	var errs error
	for key, v := range values {
		if !l.dirty[key] {
			continue
		}
		if err := saveKey(ctx, b, key, v); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		delete(l.dirty, key)
	}
	return errs
}

// Dirty reports whether some collection has not been saved yet.
func (l *Ledger) Dirty() bool { return len(l.dirty) > 0 }

func loadKey[T any](ctx context.Context, b storage.Backend, key string, dst *[]T) error {
	txt, ok, err := b.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("cannot read %q: %w", key, err)
	}
	if !ok {
		return nil
	}
	var v []T
	if err := json.Unmarshal([]byte(txt), &v); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err}).Warn("ignoring malformed stored data")
		return nil
	}
	*dst = v
	return nil
}

func saveKey(ctx context.Context, b storage.Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", key, err)
	}
	if err := b.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	return nil
}

func indexByKey[T Record](records []T, id string) int {
	return slices.IndexFunc(records, func(r T) bool { return r.Key() == id })
}

func deleteByKey[T Record](records []T, id string) ([]T, bool) {
	if indexByKey(records, id) < 0 {
		return records, false
	}
	return slices.DeleteFunc(records, func(r T) bool { return r.Key() == id }), true
}

// nonNil makes empty collections persist as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
