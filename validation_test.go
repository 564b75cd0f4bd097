package caravan

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTradeRequest_Validate(t *testing.T) {
	l := NewLedger()
	tests := []struct {
		name    string
		req     TradeRequest
		wantErr string
	}{
		{"valid", TradeRequest{From: "Aela", To: "Garen", PricePerPack: 100, Packs: 1}, ""},
		{"missing from", TradeRequest{To: "Garen", PricePerPack: 100, Packs: 1}, "From is required"},
		{"zero price", TradeRequest{From: "Aela", To: "Garen", Packs: 1}, "PricePerPack must be gt 0"},
		{"zero packs", TradeRequest{From: "Aela", To: "Garen", PricePerPack: 100}, "Packs must be gte 1"},
		{"unknown node", TradeRequest{From: "Aela", To: "Atlantis", PricePerPack: 100, Packs: 1}, `unknown node "Atlantis"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate(l)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestExpenseRequest_Amount(t *testing.T) {
	balance := ToCopper(10, 0, 0)
	got, err := ExpenseRequest{Remaining: ToCopper(8, 50, 0)}.Amount(balance)
	if err != nil || got != ToCopper(1, 50, 0) {
		t.Errorf("Amount() = %v, %v, want 1з 50с", got, err)
	}
	for _, remaining := range []Copper{balance, balance + 1} {
		if _, err := (ExpenseRequest{Remaining: remaining}).Amount(balance); !errors.Is(err, ErrNonPositiveExpense) {
			t.Errorf("Amount() with remaining %v = %v, want ErrNonPositiveExpense", remaining, err)
		}
	}
	if _, err := (ExpenseRequest{Remaining: -1}).Amount(balance); !errors.Is(err, ErrInvalid) {
		t.Errorf("Amount() with a negative remaining = %v, want ErrInvalid", err)
	}
}

func TestCoinSaleRequest_Validate(t *testing.T) {
	if err := (CoinSaleRequest{Amount: 1, USDPrice: decimal.Zero}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for a free sale", err)
	}
	if err := (CoinSaleRequest{Amount: 0}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() = %v, want ErrInvalid for a zero amount", err)
	}
	if err := (CoinSaleRequest{Amount: 1, USDPrice: decimal.NewFromInt(-1)}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() = %v, want ErrInvalid for a negative price", err)
	}
}
