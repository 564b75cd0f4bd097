package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/renderer"
	"github.com/google/subcommands"
)

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show the key figures of the shift" }
func (*dashboardCmd) Usage() string {
	return `cvn dashboard

  Shows the balance, totals, best routes and the estimated earnings per hour.
`
}

func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *caravan.Session) error {
		printMarkdown(renderer.DashboardMarkdown(s.Dashboard(settings.Rates)))
		return nil
	})
}

type historyCmd struct {
	kind string
	n    int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list the records of the shift" }
func (*historyCmd) Usage() string {
	return `cvn history [-type sale|expense|coin_sale] [-n <count>]

  Lists the records of the shift, newest first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "type", "", "only list records of this type")
	f.IntVar(&c.n, "n", 0, "only list the n most recent records")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var kinds []caravan.Kind
	if c.kind != "" {
		k, err := caravan.ParseKind(c.kind)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		kinds = append(kinds, k)
	}
	return withSession(ctx, func(s *caravan.Session) error {
		log := caravan.History(s.CurrentTrades(), s.CurrentExpenses(), s.CurrentCoinSales(), kinds...)
		if c.n > 0 && len(log) > c.n {
			log = log[:c.n]
		}
		printMarkdown(renderer.HistoryMarkdown(log))
		return nil
	})
}

type routesCmd struct {
	all bool
}

func (*routesCmd) Name() string     { return "routes" }
func (*routesCmd) Synopsis() string { return "rank routes by average profit" }
func (*routesCmd) Usage() string {
	return `cvn routes [-all]

  Ranks the routes of the shift by average profit per trade. Only the five
  best are shown unless -all is given.
`
}

func (c *routesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "show all routes")
}

func (c *routesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *caravan.Session) error {
		stats := caravan.ComputeRouteStats(s.CurrentTrades())
		if c.all {
			stats = caravan.AllRouteStats(s.CurrentTrades())
		}
		printMarkdown(renderer.RoutesMarkdown(stats))
		return nil
	})
}

type seriesCmd struct {
	from string
	to   string
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "show the price per pack of a route over time" }
func (*seriesCmd) Usage() string {
	return `cvn series [-from <node> -to <node>]

  Lists the price per pack of a route, oldest first. Without a route, the
  best route of the shift is shown.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "departure node")
	f.StringVar(&c.to, "to", "", "destination node")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.from == "") != (c.to == "") {
		fmt.Fprintln(os.Stderr, "-from and -to must be given together")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *caravan.Session) error {
		trades := s.CurrentTrades()
		route := caravan.Route{From: c.from, To: c.to}
		if route.IsZero() {
			top := caravan.ComputeRouteStats(trades)
			if len(top) == 0 {
				fmt.Fprintln(stdout, "No trades yet.")
				return nil
			}
			route = top[0].Route
		}
		printMarkdown(renderer.SeriesMarkdown(route, caravan.BuildSeries(trades, route)))
		return nil
	})
}
