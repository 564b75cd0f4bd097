package advisor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/etnz/caravan"
	"google.golang.org/genai"
)

// fakeModel records requests and answers with a fixed text.
type fakeModel struct {
	mu       sync.Mutex
	answer   string
	err      error
	requests []Request
	system   string
	lib      *Library
	sent     []string
}

func (m *fakeModel) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.answer, m.err
}

func (m *fakeModel) StartChat(ctx context.Context, system string, temperature float32, lib *Library) (Chat, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.system, m.lib = system, lib
	return m, nil
}

func (m *fakeModel) Send(ctx context.Context, text string) (string, error) {
	m.sent = append(m.sent, text)
	return m.answer, nil
}

func day(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-01 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Trades: []caravan.Trade{
			caravan.NewTrade(day("10:00"), "Aela", "Garen", 2, 150),
			caravan.NewTrade(day("11:00"), "Aela", "Garen", 3, 200),
			caravan.NewTrade(day("12:00"), "Garen", "Aela", 1, 90),
		},
		Expenses:  []caravan.Expense{caravan.NewExpense(day("10:30"), "Iron ore", 50)},
		CoinSales: []caravan.CoinSale{},
		Balance:   1234,
	}
}

func TestRequestAdvice_Empty(t *testing.T) {
	m := &fakeModel{answer: "never"}
	got := New(m, "").RequestAdvice(context.Background(), Snapshot{})
	if got != NoDataMessage {
		t.Errorf("RequestAdvice() = %q, want %q", got, NoDataMessage)
	}
	if len(m.requests) != 0 {
		t.Errorf("model called %d times on an empty ledger, want 0", len(m.requests))
	}
}

func TestRequestAdvice(t *testing.T) {
	m := &fakeModel{answer: "Keep trading Aela → Garen."}
	got := New(m, "Russian").RequestAdvice(context.Background(), sampleSnapshot())
	if got != m.answer {
		t.Errorf("RequestAdvice() = %q, want %q", got, m.answer)
	}
	if len(m.requests) != 1 {
		t.Fatalf("model called %d times, want 1", len(m.requests))
	}
	req := m.requests[0]
	if req.Temperature != Temperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, Temperature)
	}
	for _, want := range []string{"Aela → Garen", "Iron ore", "Russian", "12с 34м"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt does not contain %q:\n%s", want, req.Prompt)
		}
	}
	if !strings.Contains(req.System, "Verra") {
		t.Errorf("system instruction = %q", req.System)
	}
}

func TestRequestAdvice_Failures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		want  string
	}{
		{"error", &fakeModel{err: errors.New("network down")}, FallbackMessage},
		{"empty answer", &fakeModel{answer: "  "}, EmptyMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := New(tc.model, "").RequestAdvice(context.Background(), sampleSnapshot())
			if got != tc.want {
				t.Errorf("RequestAdvice() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSummary_Window(t *testing.T) {
	var snap Snapshot
	start := day("00:00")
	for i := range 30 {
		snap.Trades = append(snap.Trades, caravan.NewTrade(start.Add(time.Duration(i)*time.Minute), "A", "B", 1, caravan.Copper(i+1)))
	}
	lines := strings.Split(strings.TrimSpace(snap.Summary(Window)), "\n")
	if len(lines) != Window {
		t.Fatalf("Summary() has %d lines, want %d", len(lines), Window)
	}
	// The oldest line kept is the 11th trade, the newest the 30th.
	if !strings.HasPrefix(lines[0], "2025-03-01 00:10") {
		t.Errorf("first line = %q, want the 11th trade", lines[0])
	}
	if !strings.HasPrefix(lines[Window-1], "2025-03-01 00:29") {
		t.Errorf("last line = %q, want the 30th trade", lines[Window-1])
	}
}

func TestConversation(t *testing.T) {
	m := &fakeModel{answer: "Sure."}
	c := New(m, "").StartConversation(context.Background(), sampleSnapshot())
	if got := c.Send(context.Background(), "which route?"); got != "Sure." {
		t.Errorf("Send() = %q, want %q", got, "Sure.")
	}
	if len(m.sent) != 1 || m.sent[0] != "which route?" {
		t.Errorf("sent = %q", m.sent)
	}
	if !strings.Contains(m.system, "Aela → Garen") {
		t.Errorf("conversation is not primed with the history:\n%s", m.system)
	}
	if len(m.lib.Declarations()) != 3 {
		t.Errorf("got %d tools, want 3", len(m.lib.Declarations()))
	}
}

func TestConversation_Unavailable(t *testing.T) {
	m := &fakeModel{err: errors.New("no key")}
	c := New(m, "").StartConversation(context.Background(), sampleSnapshot())
	if got := c.Send(context.Background(), "hello"); got != FallbackMessage {
		t.Errorf("Send() = %q, want %q", got, FallbackMessage)
	}
}

func TestTools(t *testing.T) {
	lib := Tools(sampleSnapshot())
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string // substring of the output
		err  bool
	}{
		{"route_stats", nil, "Aela → Garen", false},
		{"route_series", map[string]any{"from": "Aela", "to": "Garen"}, "1с 50м", false},
		{"route_series", map[string]any{"from": "Aela"}, "", true},
		{"balance", nil, "12с 34м", false},
		{"unknown", nil, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := lib.Call(ctx, &genai.FunctionCall{ID: "1", Name: tc.name, Args: tc.args})
			if resp.ID != "1" || resp.Name != tc.name {
				t.Errorf("response id/name = %q/%q", resp.ID, resp.Name)
			}
			if tc.err {
				if _, ok := resp.Response["error"]; !ok {
					t.Errorf("Call(%s) = %v, want an error", tc.name, resp.Response)
				}
				return
			}
			out, _ := resp.Response["output"].(string)
			if !strings.Contains(out, tc.want) {
				t.Errorf("Call(%s) output does not contain %q:\n%s", tc.name, tc.want, out)
			}
		})
	}
}

func TestRun(t *testing.T) {
	m := &fakeModel{answer: "ok"}
	c := New(m, "").StartConversation(context.Background(), sampleSnapshot())
	var out bytes.Buffer
	var printed []string
	err := Run(context.Background(), c, &out, strings.NewReader("second\n\nbye\nnever\n"), func(s string) { printed = append(printed, s) }, "first")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := []string{"first", "second"}; strings.Join(m.sent, ",") != strings.Join(want, ",") {
		t.Errorf("sent = %q, want %q", m.sent, want)
	}
	if len(printed) != 2 {
		t.Errorf("printed %d answers, want 2", len(printed))
	}
}
