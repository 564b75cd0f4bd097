package caravan

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
)

// this file handles the import/export format: a single JSON object holding
// the whole session.

// DocumentVersion is the version written in exported documents.
const DocumentVersion = "2.1"

// Document is the import/export format.
type Document struct {
	Trades          []Trade    `json:"trades"`
	Expenses        []Expense  `json:"expenses"`
	CoinSales       []CoinSale `json:"coinSales"`
	Nodes           []Node     `json:"nodes"` // custom nodes only
	DayStartTime    *string    `json:"dayStartTime"`
	StartingBalance Copper     `json:"startingBalance"`
	Version         string     `json:"version"`
	Timestamp       string     `json:"timestamp"`
}

// Export returns the whole session as a Document.
func (s *Session) Export() Document {
	d := Document{
		Trades:    nonNil(s.Ledger.Trades()),
		Expenses:  nonNil(s.Ledger.Expenses()),
		CoinSales: nonNil(s.Ledger.CoinSales()),
		Nodes:     nonNil(s.Ledger.CustomNodes()),
		Version:   DocumentVersion,
		Timestamp: s.now().Format(time.RFC3339),
	}
	if a, ok := s.shift.(Active); ok {
		start := a.Start.Format(time.RFC3339Nano)
		d.DayStartTime = &start
		d.StartingBalance = a.StartingBalance
	}
	return d
}

// WriteTo writes the document as indented JSON.
func (d Document) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

// imported holds the decoded fields of a document, nil when absent.
type imported struct {
	trades    []Trade
	expenses  []Expense
	coinSales []CoinSale
	nodes     []Node
	hasShift  bool
	shift     Shift
	fields    []string
}

// Import reads a document and replaces every collection it contains.
//
// The document is fully decoded before anything changes: on error the
// session is left untouched. A bare JSON array is read as a list of trades.
// A present "dayStartTime" resumes the shift with "startingBalance", an
// explicit null closes it.
//
// It returns the names of the imported fields.
func (s *Session) Import(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read import: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse import: %w", err)
	}

	var in imported
	switch doc.(type) {
	case []any:
		if err := decodeField(doc, "$", &in.trades); err != nil {
			return nil, err
		}
		in.fields = append(in.fields, "trades")
	case map[string]any:
		if err := in.decode(doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot parse import: expected a JSON object, got %T", doc)
	}

	s.apply(in)
	return in.fields, nil
}

func (in *imported) decode(doc any) error {
	// An explicit null clears the collection like an empty array.
	fields := []struct {
		name  string
		dst   any
		clear func()
	}{
		{"trades", &in.trades, func() { in.trades = nonNil(in.trades) }},
		{"expenses", &in.expenses, func() { in.expenses = nonNil(in.expenses) }},
		{"coinSales", &in.coinSales, func() { in.coinSales = nonNil(in.coinSales) }},
		{"nodes", &in.nodes, func() { in.nodes = nonNil(in.nodes) }},
	}
	for _, f := range fields {
		if !has(doc, f.name) {
			continue
		}
		if err := decodeField(doc, "$."+f.name, f.dst); err != nil {
			return err
		}
		f.clear()
		in.fields = append(in.fields, f.name)
	}

	if !has(doc, "dayStartTime") {
		return nil
	}
	in.hasShift = true
	in.fields = append(in.fields, "dayStartTime")
	var start *time.Time
	if err := decodeField(doc, "$.dayStartTime", &start); err != nil {
		return err
	}
	if start == nil {
		in.shift = Inactive{}
		return nil
	}
	var balance Copper
	if has(doc, "startingBalance") {
		if err := decodeField(doc, "$.startingBalance", &balance); err != nil {
			return err
		}
	}
	in.shift = Active{Start: *start, StartingBalance: balance}
	return nil
}

// has reports whether the top level object has this property.
func has(doc any, name string) bool {
	_, err := jsonpath.Get("$."+name, doc)
	return err == nil
}

// decodeField decodes the value at path into dst.
func decodeField(doc any, path string, dst any) error {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid %s: %w", path, err)
	}
	return nil
}

func (s *Session) apply(in imported) {
	if in.trades != nil {
		for i := range in.trades {
			t := &in.trades[i]
			normalize(&t.baseRecord, KindSale)
			t.Profit = t.computeProfit()
		}
		s.Ledger.replaceTrades(in.trades)
	}
	if in.expenses != nil {
		for i := range in.expenses {
			normalize(&in.expenses[i].baseRecord, KindExpense)
		}
		s.Ledger.replaceExpenses(in.expenses)
	}
	if in.coinSales != nil {
		for i := range in.coinSales {
			normalize(&in.coinSales[i].baseRecord, KindCoinSale)
		}
		s.Ledger.replaceCoinSales(in.coinSales)
	}
	if in.nodes != nil {
		s.Ledger.replaceNodes(in.nodes)
	}
	if in.hasShift {
		s.shift = in.shift
		s.dirty[KeyDayStartTime] = true
	}
}

// normalize fixes records written by older versions, without type or id.
func normalize(r *baseRecord, kind Kind) {
	r.Type = kind
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
}
