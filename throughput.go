package caravan

import (
	"github.com/shopspring/decimal"
)

// Rates are the conversion policy of the throughput estimator. They are
// configuration, not derived values.
type Rates struct {
	// FallbackUSDPerGold is used when no coin sale gives an observed rate.
	FallbackUSDPerGold decimal.Decimal
	// LocalPerUSD converts dollars to the local currency.
	LocalPerUSD decimal.Decimal
	// LocalCurrency is the ISO code of the local currency.
	LocalCurrency string
}

// DefaultRates converts at 0.005 USD per gold and reports in USD.
var DefaultRates = Rates{
	FallbackUSDPerGold: decimal.RequireFromString("0.005"),
	LocalPerUSD:        decimal.NewFromInt(1),
	LocalCurrency:      "USD",
}

// ObservedRate returns the dollars received and the copper sold in coinSales.
func ObservedRate(coinSales []CoinSale) (usd decimal.Decimal, sold Copper) {
	for _, s := range coinSales {
		usd = usd.Add(s.USDPrice)
		sold += s.Amount
	}
	return usd, sold
}

// USDPerGold returns the exchange rate observed, or the fallback one when
// nothing was sold yet.
func (r Rates) USDPerGold(observedUSD decimal.Decimal, observedSold Copper) decimal.Decimal {
	if observedSold > 0 && observedUSD.IsPositive() {
		return observedUSD.Div(observedSold.Gold())
	}
	return r.FallbackUSDPerGold
}

// EstimatePerHour projects the real money earned per hour of trading, in
// r.LocalCurrency.
//
// The estimate is a heuristic, not an accounting identity: it only considers
// trades recorded from a timed trip, values their profit at the observed (or
// fallback) exchange rate and divides by the time spent. It returns 0 when no
// trade was timed.
func EstimatePerHour(trades []Trade, observedUSD decimal.Decimal, observedSold Copper, r Rates) decimal.Decimal {
	var profit Copper
	var minutes int64
	for _, t := range trades {
		d, ok := t.Duration()
		if !ok || d <= 0 {
			continue
		}
		profit += t.Profit
		minutes += int64(d)
	}
	if minutes == 0 {
		return decimal.Zero
	}

	usd := profit.Gold().Mul(r.USDPerGold(observedUSD, observedSold))
	local := usd.Mul(r.LocalPerUSD)
	hours := decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60))
	return local.Div(hours)
}
