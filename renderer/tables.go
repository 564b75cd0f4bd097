package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/caravan"
	md "github.com/nao1215/markdown"
)

const stamp = "2006-01-02 15:04"

// RoutesMarkdown renders route statistics as a table, best route first.
func RoutesMarkdown(stats []caravan.RouteStat) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	if len(stats) == 0 {
		doc.PlainText("No trades yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Route", "Trades", "Packs", "Avg Profit", "Total Profit", "Last Used"},
		Rows:   [][]string{},
	}
	for _, s := range stats {
		table.Rows = append(table.Rows, []string{
			s.Route.String(),
			strconv.Itoa(s.Count),
			strconv.Itoa(s.TotalPacks),
			md.Bold(s.AvgProfit.String()),
			s.TotalProfit.String(),
			s.LastUsed.Local().Format(stamp),
		})
	}
	doc.Table(table)
	return doc.String()
}

// SeriesMarkdown renders the price per pack of a route over time.
func SeriesMarkdown(route caravan.Route, points []caravan.Point) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Price per pack %s", route))
	if !caravan.Sufficient(points) {
		doc.PlainText(fmt.Sprintf("Not enough trades on this route: at least %d are needed.", caravan.MinSeriesPoints))
		if len(points) == 0 {
			return doc.String()
		}
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Price", "Gold"},
		Rows:      [][]string{},
	}
	for _, p := range points {
		table.Rows = append(table.Rows, []string{
			p.At.Local().Format(stamp),
			p.Price.String(),
			p.Gold().StringFixed(4),
		})
	}
	doc.Table(table)
	return doc.String()
}

// HistoryMarkdown renders records in the given order.
func HistoryMarkdown(records []caravan.Record) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("History")
	if len(records) == 0 {
		doc.PlainText("No records yet.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Date", "Type", "Details", "Amount", "ID"},
		Rows:   [][]string{},
	}
	for _, r := range records {
		details, amount := describe(r)
		table.Rows = append(table.Rows, []string{
			r.When().Local().Format(stamp),
			string(r.What()),
			details,
			amount,
			r.Key(),
		})
	}
	doc.Table(table)
	return doc.String()
}

// describe returns the details of a record and its signed effect on the balance.
func describe(r caravan.Record) (details, amount string) {
	switch v := r.(type) {
	case caravan.Trade:
		details = fmt.Sprintf("%s, %d × %s", v.Route(), v.PacksCount, v.PricePerPack)
		if m, ok := v.Duration(); ok {
			details += fmt.Sprintf(" in %d min", m)
		}
		return details, "+" + v.Profit.String()
	case caravan.Expense:
		return v.Label, "-" + v.Amount.String()
	case caravan.CoinSale:
		return fmt.Sprintf("sold for %s", v.Proceeds()), "-" + v.Amount.String()
	}
	return "", ""
}

// NodesMarkdown renders the known nodes. custom nodes are flagged.
func NodesMarkdown(nodes []caravan.Node, custom []caravan.Node) string {
	isCustom := make(map[string]bool, len(custom))
	for _, n := range custom {
		isCustom[n.Name] = true
	}

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Nodes")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Name", "Region", "Custom"},
		Rows:      [][]string{},
	}
	for _, n := range nodes {
		mark := ""
		if isCustom[n.Name] {
			mark = "yes"
		}
		table.Rows = append(table.Rows, []string{n.Name, n.Region, mark})
	}
	doc.Table(table)
	return doc.String()
}
