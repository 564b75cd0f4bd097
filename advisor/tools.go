package advisor

import (
	"context"
	"fmt"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/renderer"
	"google.golang.org/genai"
)

// Tools returns the read-only functions answering questions about snap.
func Tools(snap Snapshot) *Library {
	return NewLibrary(
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "route_stats",
				Description: "Lists every route traded in the current shift, ranked by average profit per trade.",
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown table with the route, the number of trades, packs, total and average profit.",
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				return renderer.RoutesMarkdown(caravan.AllRouteStats(snap.Trades)), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "route_series",
				Description: "Returns the price per pack observed on a route over time, oldest first.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"from": {Type: genai.TypeString, Description: "Name of the departure node."},
						"to":   {Type: genai.TypeString, Description: "Name of the destination node."},
					},
					Required: []string{"from", "to"},
				},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown table of the price per pack by date.",
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				from, err := stringArg(args, "from")
				if err != nil {
					return "", err
				}
				to, err := stringArg(args, "to")
				if err != nil {
					return "", err
				}
				route := caravan.Route{From: from, To: to}
				return renderer.SeriesMarkdown(route, caravan.BuildSeries(snap.Trades, route)), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "balance",
				Description: "Returns the current balance with total profit, expenses and gold sold for real money.",
				Response:    &genai.Schema{Type: genai.TypeString},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				return fmt.Sprintf("balance: %s\nprofit: %s\nexpenses: %s\ngold sold: %s\n",
					snap.Balance,
					caravan.TotalProfit(snap.Trades),
					caravan.TotalExpenses(snap.Expenses),
					caravan.TotalSold(snap.CoinSales)), nil
			},
		},
	)
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	return s, nil
}
