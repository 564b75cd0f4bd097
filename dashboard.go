package caravan

import (
	"github.com/shopspring/decimal"
)

// Dashboard gathers the key figures of the current shift.
type Dashboard struct {
	Shift         Shift           `json:"-"`
	Balance       Copper          `json:"balance"`
	TotalProfit   Copper          `json:"totalProfit"`
	TotalExpenses Copper          `json:"totalExpenses"`
	TotalUSD      decimal.Decimal `json:"totalUsd"`
	GoldSold      Copper          `json:"goldSold"`
	// GoldPerUSD is the gold sold for each dollar, zero if nothing was sold.
	GoldPerUSD decimal.Decimal `json:"goldPerUsd"`
	TradeCount int             `json:"tradeCount"`
	Routes     []RouteStat     `json:"routes"`
	// PerHour is the estimated earnings per hour, in Rates.LocalCurrency.
	PerHour Money `json:"-"`
}

// Dashboard computes the dashboard from the current views.
func (s *Session) Dashboard(rates Rates) Dashboard {
	trades := s.CurrentTrades()
	expenses := s.CurrentExpenses()
	sales := s.CurrentCoinSales()

	usd, sold := ObservedRate(sales)
	d := Dashboard{
		Shift:         s.shift,
		Balance:       ComputeBalance(StartingBalance(s.shift), trades, expenses, sales),
		TotalProfit:   TotalProfit(trades),
		TotalExpenses: TotalExpenses(expenses),
		TotalUSD:      usd,
		GoldSold:      sold,
		TradeCount:    len(trades),
		Routes:        ComputeRouteStats(trades),
		PerHour:       M(EstimatePerHour(trades, usd, sold, rates), rates.LocalCurrency),
	}
	if usd.IsPositive() {
		d.GoldPerUSD = sold.Gold().Div(usd)
	}
	return d
}

// ShiftStart returns the shift start as text, empty when inactive.
func (d Dashboard) ShiftStart() string {
	if a, ok := d.Shift.(Active); ok {
		return a.Start.Format("2006-01-02 15:04")
	}
	return ""
}
