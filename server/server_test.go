package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/advisor"
	"github.com/etnz/caravan/storage"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var start = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, adv *advisor.Advisor) (*Server, *storage.Memory) {
	t.Helper()
	backend := &storage.Memory{}
	clock := start
	s, err := caravan.Open(context.Background(), backend, caravan.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return New(s, caravan.DefaultRates, adv), backend
}

// do performs a request and decodes the JSON response into out, if not nil.
func do(t *testing.T, srv *Server, method, path, body string, out any) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: cannot decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("x-correlation-id", "abc")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("x-correlation-id"); got != "abc" {
		t.Errorf("correlation id = %q, want %q", got, "abc")
	}
}

func TestRecordsAndDashboard(t *testing.T) {
	srv, backend := newTestServer(t, nil)

	var shift shiftResponse
	if code := do(t, srv, "POST", "/api/shift", `{"startingBalance": 100000}`, &shift); code != http.StatusOK {
		t.Fatalf("POST /api/shift = %d", code)
	}
	if !shift.Active || shift.StartingBalance != 100000 {
		t.Errorf("shift = %+v", shift)
	}

	var trade map[string]any
	if code := do(t, srv, "POST", "/api/trades", `{"fromNode":"Aela","toNode":"Garen","pricePerPack":150,"packsCount":2}`, &trade); code != http.StatusCreated {
		t.Fatalf("POST /api/trades = %d", code)
	}
	if trade["profit"] != float64(300) || trade["type"] != "sale" {
		t.Errorf("trade = %v", trade)
	}
	if code := do(t, srv, "POST", "/api/expenses", `{"label":"","remaining":100000}`, nil); code != http.StatusCreated {
		t.Errorf("POST /api/expenses = %d", code)
	}
	if code := do(t, srv, "POST", "/api/coin-sales", `{"amount":50000,"usdPrice":0.25}`, nil); code != http.StatusCreated {
		t.Errorf("POST /api/coin-sales = %d", code)
	}

	var d struct {
		Balance     int64   `json:"balance"`
		TotalProfit int64   `json:"totalProfit"`
		GoldSold    int64   `json:"goldSold"`
		TotalUSD    float64 `json:"totalUsd"`
		TradeCount  int     `json:"tradeCount"`
		ShiftActive bool    `json:"shiftActive"`
		Currency    string  `json:"currency"`
	}
	if code := do(t, srv, "GET", "/api/dashboard", "", &d); code != http.StatusOK {
		t.Fatalf("GET /api/dashboard = %d", code)
	}
	// 100000 + 300 - 300 - 50000
	if d.Balance != 50000 || d.TotalProfit != 300 || d.GoldSold != 50000 || d.TotalUSD != 0.25 || d.TradeCount != 1 || !d.ShiftActive {
		t.Errorf("dashboard = %+v", d)
	}

	var h struct {
		Records []map[string]any `json:"records"`
	}
	do(t, srv, "GET", "/api/history", "", &h)
	if len(h.Records) != 3 || h.Records[0]["type"] != "coin_sale" {
		t.Errorf("history = %v", h.Records)
	}
	do(t, srv, "GET", "/api/history?type=expense", "", &h)
	if len(h.Records) != 1 || h.Records[0]["label"] != caravan.DefaultExpenseLabel {
		t.Errorf("expense history = %v", h.Records)
	}

	snap := backend.Snapshot()
	for _, key := range []string{caravan.KeyTrades, caravan.KeyExpenses, caravan.KeyCoinSales, caravan.KeyDayStartTime} {
		if _, ok := snap[key]; !ok {
			t.Errorf("key %s was not flushed", key)
		}
	}
}

func TestErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		method, path, body string
		want               int
	}{
		{"POST", "/api/trades", `{"fromNode":"Aela","toNode":"Nowhere","pricePerPack":1,"packsCount":1}`, http.StatusBadRequest},
		{"POST", "/api/trades", `{"fromNode":"Aela","toNode":"Garen","pricePerPack":0,"packsCount":1}`, http.StatusBadRequest},
		{"POST", "/api/trades", `not json`, http.StatusBadRequest},
		{"POST", "/api/expenses", `{"remaining":10}`, http.StatusBadRequest},
		{"POST", "/api/coin-sales", `{"amount":10,"usdPrice":-1}`, http.StatusBadRequest},
		{"DELETE", "/api/records/nope", ``, http.StatusNotFound},
		{"PUT", "/api/records/nope", `{}`, http.StatusNotFound},
		{"DELETE", "/api/trip", ``, http.StatusConflict},
		{"POST", "/api/trip/finish", `{"pricePerPack":1,"packsCount":1}`, http.StatusConflict},
		{"GET", "/api/history?type=gift", ``, http.StatusBadRequest},
		{"POST", "/api/advice", ``, http.StatusServiceUnavailable},
		{"POST", "/api/import", `"text"`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var resp struct {
				Error string `json:"error"`
			}
			if code := do(t, srv, tc.method, tc.path, tc.body, &resp); code != tc.want {
				t.Errorf("status = %d, want %d (%s)", code, tc.want, resp.Error)
			}
			if resp.Error == "" {
				t.Error("no error message")
			}
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var trade struct {
		ID string `json:"id"`
	}
	do(t, srv, "POST", "/api/trades", `{"fromNode":"Aela","toNode":"Garen","pricePerPack":150,"packsCount":2}`, &trade)

	var updated map[string]any
	if code := do(t, srv, "PUT", "/api/records/"+trade.ID, `{"packsCount":4}`, &updated); code != http.StatusOK {
		t.Fatalf("PUT = %d", code)
	}
	if updated["profit"] != float64(600) || updated["fromNode"] != "Aela" {
		t.Errorf("updated = %v", updated)
	}

	if code := do(t, srv, "DELETE", "/api/records/"+trade.ID, "", nil); code != http.StatusOK {
		t.Errorf("DELETE = %d", code)
	}
	var h struct {
		Records []map[string]any `json:"records"`
	}
	do(t, srv, "GET", "/api/history", "", &h)
	if len(h.Records) != 0 {
		t.Errorf("history after delete = %v", h.Records)
	}
}

func TestUpdateKeepsTimestamp(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var trade struct {
		ID        string    `json:"id"`
		Timestamp time.Time `json:"timestamp"`
	}
	do(t, srv, "POST", "/api/trades", `{"fromNode":"Aela","toNode":"Garen","pricePerPack":150,"packsCount":2}`, &trade)
	do(t, srv, "POST", "/api/shift", `{"startingBalance": 1000}`, nil)

	var before dashboardResponse
	do(t, srv, "GET", "/api/dashboard", "", &before)

	body := `{"timestamp":"2099-01-01T00:00:00Z","durationMinutes":600,"packsCount":3}`
	var updated struct {
		Timestamp       time.Time `json:"timestamp"`
		PacksCount      int       `json:"packsCount"`
		DurationMinutes *int      `json:"durationMinutes"`
	}
	if code := do(t, srv, "PUT", "/api/records/"+trade.ID, body, &updated); code != http.StatusOK {
		t.Fatalf("PUT = %d", code)
	}
	if !updated.Timestamp.Equal(trade.Timestamp) || updated.PacksCount != 3 || updated.DurationMinutes != nil {
		t.Errorf("updated = %+v, want the recorded timestamp, 3 packs and no duration", updated)
	}

	var after dashboardResponse
	do(t, srv, "GET", "/api/dashboard", "", &after)
	if after.Balance != before.Balance || after.Balance != 1000 || after.TradeCount != 0 {
		t.Errorf("shift balance = %d with %d trades, want 1000 with none", after.Balance, after.TradeCount)
	}
	if !after.PerHour.IsZero() {
		t.Errorf("per hour = %v, want 0 without timed trips", after.PerHour)
	}
}

func TestTrip(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	if code := do(t, srv, "POST", "/api/trip", `{"fromNode":"Aela","toNode":"Garen"}`, nil); code != http.StatusCreated {
		t.Fatalf("POST /api/trip = %d", code)
	}
	if code := do(t, srv, "POST", "/api/trip", `{"fromNode":"Aela","toNode":"Garen"}`, nil); code != http.StatusConflict {
		t.Errorf("second POST /api/trip = %d, want %d", code, http.StatusConflict)
	}

	var trip tripResponse
	do(t, srv, "GET", "/api/trip", "", &trip)
	if trip.Trip == nil || trip.Trip.FromNode != "Aela" || trip.Elapsed == "" {
		t.Errorf("trip = %+v", trip)
	}

	var trade struct {
		DurationMinutes *int `json:"durationMinutes"`
	}
	if code := do(t, srv, "POST", "/api/trip/finish", `{"pricePerPack":100,"packsCount":1}`, &trade); code != http.StatusCreated {
		t.Fatalf("POST /api/trip/finish = %d", code)
	}
	if trade.DurationMinutes == nil || *trade.DurationMinutes <= 0 {
		t.Errorf("duration = %v, want a positive duration", trade.DurationMinutes)
	}
	do(t, srv, "GET", "/api/trip", "", &trip)
	if trip.Trip != nil {
		t.Errorf("trip after finish = %+v", trip.Trip)
	}
}

func TestRoutesAndSeries(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, body := range []string{
		`{"fromNode":"Aela","toNode":"Garen","pricePerPack":100,"packsCount":1}`,
		`{"fromNode":"Aela","toNode":"Garen","pricePerPack":300,"packsCount":1}`,
		`{"fromNode":"Garen","toNode":"Aela","pricePerPack":50,"packsCount":1}`,
	} {
		do(t, srv, "POST", "/api/trades", body, nil)
	}

	var routes struct {
		Routes []caravan.RouteStat `json:"routes"`
	}
	do(t, srv, "GET", "/api/routes", "", &routes)
	if len(routes.Routes) != 2 || routes.Routes[0].From != "Aela" || routes.Routes[0].AvgProfit != 200 {
		t.Errorf("routes = %+v", routes.Routes)
	}

	var series struct {
		Route      caravan.Route `json:"route"`
		Points     []map[string]any
		Sufficient bool `json:"sufficient"`
	}
	do(t, srv, "GET", "/api/series", "", &series)
	if series.Route.From != "Aela" || len(series.Points) != 2 || !series.Sufficient {
		t.Errorf("series = %+v", series)
	}
	if series.Points[1]["gold"] != 0.03 {
		t.Errorf("gold = %v, want 0.03", series.Points[1]["gold"])
	}

	do(t, srv, "GET", "/api/series?from=Garen&to=Aela", "", &series)
	if len(series.Points) != 1 || series.Sufficient {
		t.Errorf("series = %+v", series)
	}
}

func TestNodes(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	if code := do(t, srv, "POST", "/api/nodes", `{"name":"Zephyr","region":"Isles"}`, nil); code != http.StatusCreated {
		t.Fatalf("POST /api/nodes = %d", code)
	}
	if code := do(t, srv, "POST", "/api/nodes", `{"name":"Aela","region":"Isles"}`, nil); code != http.StatusBadRequest {
		t.Errorf("duplicate node = %d, want %d", code, http.StatusBadRequest)
	}
	var nodes struct {
		Nodes  []caravan.Node `json:"nodes"`
		Custom []caravan.Node `json:"custom"`
	}
	do(t, srv, "GET", "/api/nodes", "", &nodes)
	if len(nodes.Nodes) != len(caravan.DefaultNodes)+1 || len(nodes.Custom) != 1 {
		t.Errorf("got %d nodes and %d custom", len(nodes.Nodes), len(nodes.Custom))
	}
}

func TestExportImport(t *testing.T) {
	src, _ := newTestServer(t, nil)
	do(t, src, "POST", "/api/shift", `{"startingBalance": 500}`, nil)
	do(t, src, "POST", "/api/trades", `{"fromNode":"Aela","toNode":"Garen","pricePerPack":100,"packsCount":1}`, nil)

	req := httptest.NewRequest("GET", "/api/export", nil)
	rec := httptest.NewRecorder()
	src.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/export = %d", rec.Code)
	}

	dst, _ := newTestServer(t, nil)
	var resp struct {
		Imported []string `json:"imported"`
	}
	if code := do(t, dst, "POST", "/api/import", rec.Body.String(), &resp); code != http.StatusOK {
		t.Fatalf("POST /api/import = %d", code)
	}
	var shift shiftResponse
	do(t, dst, "GET", "/api/shift", "", &shift)
	if !shift.Active || shift.Balance != 600 {
		t.Errorf("imported shift = %+v", shift)
	}
}

type fakeModel struct {
	answer string
}

func (m fakeModel) Generate(context.Context, advisor.Request) (string, error) { return m.answer, nil }
func (m fakeModel) StartChat(context.Context, string, float32, *advisor.Library) (advisor.Chat, error) {
	return nil, nil
}

func TestAdvice(t *testing.T) {
	srv, _ := newTestServer(t, advisor.New(fakeModel{answer: "Trade more."}, "English"))
	do(t, srv, "POST", "/api/trades", `{"fromNode":"Aela","toNode":"Garen","pricePerPack":100,"packsCount":1}`, nil)

	var accepted struct {
		Token uint64 `json:"token"`
	}
	if code := do(t, srv, "POST", "/api/advice", "", &accepted); code != http.StatusAccepted || accepted.Token == 0 {
		t.Fatalf("POST /api/advice = %d, %+v", code, accepted)
	}

	var advice struct {
		Text    string `json:"text"`
		Pending bool   `json:"pending"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		do(t, srv, "GET", "/api/advice", "", &advice)
		if !advice.Pending || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if advice.Text != "Trade more." || advice.Pending {
		t.Errorf("advice = %+v", advice)
	}
}
