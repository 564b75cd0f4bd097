package caravan

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Kind tags each record with its type, it is persisted as the "type" field.
type Kind string

const (
	KindSale     Kind = "sale"
	KindExpense  Kind = "expense"
	KindCoinSale Kind = "coin_sale"
)

// Record is the common interface of everything the ledger stores.
type Record interface {
	What() Kind      // What returns the kind of record.
	When() time.Time // When returns the creation instant.
	Key() string     // Key returns the unique id of the record.
}

type baseRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      Kind      `json:"type"`
}

func newBase(kind Kind, on time.Time) baseRecord {
	return baseRecord{ID: uuid.NewString(), Timestamp: on, Type: kind}
}

func (r baseRecord) What() Kind      { return r.Type }
func (r baseRecord) When() time.Time { return r.Timestamp }
func (r baseRecord) Key() string     { return r.ID }

// MarshalJSON implements the json.Marshaler interface for baseRecord.
func (r baseRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.ID)
	w.Append("timestamp", r.Timestamp)
	w.Append("type", r.Type)
	return w.MarshalJSON()
}

// Trade is a caravan delivered from one node to another.
type Trade struct {
	baseRecord
	FromNode     string `json:"fromNode"`
	ToNode       string `json:"toNode"`
	PacksCount   int    `json:"packsCount"`
	PricePerPack Copper `json:"pricePerPack"`
	// Profit is PricePerPack * PacksCount, stored for fast aggregation.
	Profit Copper `json:"profit"`
	// DurationMinutes is only set for trades recorded from a timed trip.
	DurationMinutes *int `json:"durationMinutes,omitempty"`
}

// NewTrade creates a trade with a fresh id and computes its profit.
func NewTrade(on time.Time, from, to string, packs int, pricePerPack Copper) Trade {
	t := Trade{
		baseRecord:   newBase(KindSale, on),
		FromNode:     from,
		ToNode:       to,
		PacksCount:   packs,
		PricePerPack: pricePerPack,
	}
	t.Profit = t.computeProfit()
	return t
}

func (t Trade) computeProfit() Copper { return t.PricePerPack * Copper(t.PacksCount) }

// Route returns the ordered pair of nodes of this trade.
func (t Trade) Route() Route { return Route{From: t.FromNode, To: t.ToNode} }

// Duration returns the trip duration in minutes, and false if the trade was not timed.
func (t Trade) Duration() (int, bool) {
	if t.DurationMinutes == nil {
		return 0, false
	}
	return *t.DurationMinutes, true
}

// MarshalJSON implements the json.Marshaler interface for Trade.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseRecord)
	w.Append("fromNode", t.FromNode)
	w.Append("toNode", t.ToNode)
	w.Append("packsCount", t.PacksCount)
	w.Append("pricePerPack", t.PricePerPack)
	w.Append("profit", t.Profit)
	w.Optional("durationMinutes", t.DurationMinutes)
	return w.MarshalJSON()
}

// Expense is money spent in game, typically buying resources.
type Expense struct {
	baseRecord
	Label  string `json:"label"`
	Amount Copper `json:"amount"`
}

// NewExpense creates an expense with a fresh id.
func NewExpense(on time.Time, label string, amount Copper) Expense {
	return Expense{baseRecord: newBase(KindExpense, on), Label: label, Amount: amount}
}

// MarshalJSON implements the json.Marshaler interface for Expense.
func (e Expense) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(e.baseRecord)
	w.Append("label", e.Label)
	w.Append("amount", e.Amount)
	return w.MarshalJSON()
}

// CoinSale is in-game currency sold for real money.
type CoinSale struct {
	baseRecord
	Amount   Copper          `json:"amount"`
	USDPrice decimal.Decimal `json:"usdPrice"`
}

// NewCoinSale creates a coin sale with a fresh id.
func NewCoinSale(on time.Time, amount Copper, usd decimal.Decimal) CoinSale {
	return CoinSale{baseRecord: newBase(KindCoinSale, on), Amount: amount, USDPrice: usd}
}

// MarshalJSON implements the json.Marshaler interface for CoinSale.
func (s CoinSale) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(s.baseRecord)
	w.Append("amount", s.Amount)
	w.Append("usdPrice", s.USDPrice)
	return w.MarshalJSON()
}

// Proceeds returns the real money received.
func (s CoinSale) Proceeds() Money { return USD(s.USDPrice) }

var (
	_ json.Marshaler = Trade{}
	_ json.Marshaler = Expense{}
	_ json.Marshaler = CoinSale{}
)
