package caravan

// ComputeBalance derives the wallet balance.
//
// Collections must already be filtered by the current shift. The result is
// not clamped: a negative balance is a legitimate over-committed wallet.
func ComputeBalance(starting Copper, trades []Trade, expenses []Expense, coinSales []CoinSale) Copper {
	return starting + TotalProfit(trades) - TotalExpenses(expenses) - TotalSold(coinSales)
}

// TotalProfit sums the profit of trades.
func TotalProfit(trades []Trade) (total Copper) {
	for _, t := range trades {
		total += t.Profit
	}
	return total
}

// TotalExpenses sums the amount of expenses.
func TotalExpenses(expenses []Expense) (total Copper) {
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// TotalSold sums the in-game amount sold in coin sales.
func TotalSold(coinSales []CoinSale) (total Copper) {
	for _, s := range coinSales {
		total += s.Amount
	}
	return total
}
