package caravan

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/etnz/caravan/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func keys[T Record](records []T) []string {
	var ids []string
	for _, r := range records {
		ids = append(ids, r.Key())
	}
	return ids
}

func TestLedger_DeleteTrade(t *testing.T) {
	l := NewLedger()
	a := trade("10:00", "Aela", "Garen", 1, 100)
	b := trade("10:05", "Aela", "Garen", 1, 200)
	c := trade("10:10", "Verra", "Garen", 1, 300)
	l.AddTrade(a)
	l.AddTrade(b)
	l.AddTrade(c)

	if !l.DeleteTrade(b.ID) {
		t.Fatalf("DeleteTrade(%q) = false, want true", b.ID)
	}
	if diff := cmp.Diff([]string{a.ID, c.ID}, keys(l.Trades())); diff != "" {
		t.Errorf("Trades() mismatch (-want +got):\n%s", diff)
	}

	if l.DeleteTrade("missing") {
		t.Errorf("DeleteTrade(missing) = true, want false")
	}
	if got := len(l.Trades()); got != 2 {
		t.Errorf("len(Trades()) = %d after deleting a missing id, want 2", got)
	}
}

func TestLedger_UpdateTrade(t *testing.T) {
	l := NewLedger()
	a := trade("10:00", "Aela", "Garen", 1, 100)
	b := trade("10:05", "Aela", "Garen", 1, 200)
	l.AddTrade(a)
	l.AddTrade(b)

	a.PacksCount = 3
	a.PricePerPack = 500
	a.Timestamp = at("23:00")
	minutes := 600
	a.DurationMinutes = &minutes
	if !l.UpdateTrade(a) {
		t.Fatalf("UpdateTrade() = false, want true")
	}
	got := l.Trades()
	if got[0].ID != a.ID {
		t.Fatalf("UpdateTrade reordered the trades: %v", keys(got))
	}
	if got[0].Profit != 1500 {
		t.Errorf("updated profit = %d, want 1500", got[0].Profit)
	}
	if !got[0].Timestamp.Equal(at("10:00")) {
		t.Errorf("updated timestamp = %v, want the recorded one", got[0].Timestamp)
	}
	if d, ok := got[0].Duration(); ok {
		t.Errorf("updated trade has a duration of %d min, want none", d)
	}

	ghost := trade("11:00", "Aela", "Garen", 1, 100)
	if l.UpdateTrade(ghost) {
		t.Errorf("UpdateTrade(unknown) = true, want false")
	}
	if len(l.Trades()) != 2 {
		t.Errorf("UpdateTrade(unknown) changed the ledger")
	}
}

func TestLedger_UpdateKeepsTimestamp(t *testing.T) {
	l := NewLedger()
	e := NewExpense(at("10:00"), "Ore", 100)
	c := NewCoinSale(at("10:00"), 100, decimal.NewFromInt(1))
	l.AddExpense(e)
	l.AddCoinSale(c)

	e.Timestamp, e.Amount = at("23:00"), 300
	c.Timestamp, c.Amount = at("23:00"), 300
	if !l.UpdateExpense(e) || !l.UpdateCoinSale(c) {
		t.Fatal("updates of known records failed")
	}
	if got := l.Expenses()[0]; !got.Timestamp.Equal(at("10:00")) || got.Amount != 300 {
		t.Errorf("updated expense = %v %v, want 10:00 300", got.Timestamp, got.Amount)
	}
	if got := l.CoinSales()[0]; !got.Timestamp.Equal(at("10:00")) || got.Amount != 300 {
		t.Errorf("updated coin sale = %v %v, want 10:00 300", got.Timestamp, got.Amount)
	}
}

func TestLedger_Nodes(t *testing.T) {
	l := NewLedger()
	if _, ok := l.AddNode("Aela", "Elsewhere"); ok {
		t.Errorf("AddNode(Aela) = true, want false for a default node")
	}
	if _, ok := l.AddNode("aela", "Lowercase"); !ok {
		t.Errorf("AddNode(aela) = false, names are case-sensitive")
	}
	if _, ok := l.AddNode("Zeta", "Far"); !ok {
		t.Errorf("AddNode(Zeta) = false, want true")
	}
	if _, ok := l.AddNode("Zeta", "Far"); ok {
		t.Errorf("AddNode(Zeta) twice = true, want false")
	}

	nodes := l.Nodes()
	if got, want := len(nodes), len(DefaultNodes)+2; got != want {
		t.Fatalf("len(Nodes()) = %d, want %d", got, want)
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].Name > nodes[i].Name {
			t.Errorf("Nodes() not sorted: %q before %q", nodes[i-1].Name, nodes[i].Name)
		}
	}
	if got := len(l.CustomNodes()); got != 2 {
		t.Errorf("len(CustomNodes()) = %d, want 2", got)
	}
}

func TestLedger_SaveLoad(t *testing.T) {
	ctx := context.Background()
	backend := &storage.Memory{}

	l := NewLedger()
	l.AddTrade(timed(trade("10:00", "Aela", "Garen", 2, 150), 12))
	l.AddExpense(NewExpense(at("10:30"), "Iron", 500))
	l.AddNode("Zeta", "Far")
	if err := l.Save(ctx, backend); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if l.Dirty() {
		t.Errorf("Dirty() = true after Save()")
	}

	loaded := NewLedger()
	if err := loaded.Load(ctx, backend); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff(l.Trades(), loaded.Trades(), cmp.AllowUnexported(Trade{})); diff != "" {
		t.Errorf("trades mismatch (-want +got):\n%s", diff)
	}
	if got := loaded.Expenses(); len(got) != 1 || got[0].Amount != 500 || got[0].Label != "Iron" {
		t.Errorf("expenses = %+v", got)
	}
	if !loaded.HasNode("Zeta") {
		t.Errorf("custom node was not loaded")
	}
	if got := loaded.CoinSales(); len(got) != 0 {
		t.Errorf("coin sales = %v, want none", got)
	}
}

func TestLedger_SaveOnlyDirty(t *testing.T) {
	ctx := context.Background()
	backend := &storage.Memory{}
	l := NewLedger()
	l.AddCoinSale(NewCoinSale(at("09:00"), 10000, mustDecimal("1.25")))
	if err := l.Save(ctx, backend); err != nil {
		t.Fatal(err)
	}
	got := backend.Snapshot()
	if _, ok := got[KeyCoinSales]; !ok {
		t.Errorf("coin sales were not saved")
	}
	if _, ok := got[KeyTrades]; ok {
		t.Errorf("trades were saved although never modified")
	}
}

func TestLedger_LoadMalformed(t *testing.T) {
	ctx := context.Background()
	good, _ := json.Marshal([]Expense{NewExpense(at("10:00"), "Coal", 42)})
	backend := storage.NewMemory(map[string]string{
		KeyTrades:   "{not json",
		KeyExpenses: string(good),
	})
	l := NewLedger()
	if err := l.Load(ctx, backend); err != nil {
		t.Fatalf("Load() = %v, malformed data must not fail", err)
	}
	if len(l.Trades()) != 0 {
		t.Errorf("malformed trades were not treated as absent")
	}
	if len(l.Expenses()) != 1 {
		t.Errorf("valid expenses were not loaded")
	}
}

func TestRecord_JSON(t *testing.T) {
	tr := trade("10:00", "Aela", "Garen", 2, 150)
	tr.ID = "t1"
	data, err := json.Marshal(tr)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"t1","timestamp":"2025-03-01T10:00:00Z","type":"sale","fromNode":"Aela","toNode":"Garen","packsCount":2,"pricePerPack":150,"profit":300}`
	if string(data) != want {
		t.Errorf("Marshal(trade) =\n%s\nwant\n%s", data, want)
	}

	for _, minutes := range []int{0, 45} {
		data, err = json.Marshal(timed(tr, minutes))
		if err != nil {
			t.Fatal(err)
		}
		want = fmt.Sprintf(`{"id":"t1","timestamp":"2025-03-01T10:00:00Z","type":"sale","fromNode":"Aela","toNode":"Garen","packsCount":2,"pricePerPack":150,"profit":300,"durationMinutes":%d}`, minutes)
		if string(data) != want {
			t.Errorf("Marshal(timed trade) =\n%s\nwant\n%s", data, want)
		}
	}

	cs := NewCoinSale(at("11:00"), 20000, mustDecimal("3.5"))
	cs.ID = "c1"
	data, err = json.Marshal(cs)
	if err != nil {
		t.Fatal(err)
	}
	want = `{"id":"c1","timestamp":"2025-03-01T11:00:00Z","type":"coin_sale","amount":20000,"usdPrice":3.5}`
	if string(data) != want {
		t.Errorf("Marshal(coin sale) =\n%s\nwant\n%s", data, want)
	}
}
