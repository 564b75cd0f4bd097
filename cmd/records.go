package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/renderer"
	"github.com/google/subcommands"
)

type tradeCmd struct {
	from  string
	to    string
	price copperFlag
	packs int
	trip  bool
}

func (*tradeCmd) Name() string     { return "trade" }
func (*tradeCmd) Synopsis() string { return "record a delivery of trade packs" }
func (*tradeCmd) Usage() string {
	return `cvn trade -from <node> -to <node> -price <amount> -packs <n>
cvn trade -trip -price <amount> -packs <n>

  Records a trade. The profit is the price per pack times the number of packs.
  With -trip, the route is the one of the trip in progress and the trip
  duration is recorded with the trade.
`
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "departure node")
	f.StringVar(&c.to, "to", "", "destination node")
	f.Var(&c.price, "price", "price per pack, like \"1з 50с\" or \"1g 50s\"")
	f.IntVar(&c.packs, "packs", 1, "number of packs")
	f.BoolVar(&c.trip, "trip", false, "finish the trip in progress")
}

func (c *tradeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.price.set {
		fmt.Fprintln(os.Stderr, "-price is required")
		return subcommands.ExitUsageError
	}
	if c.trip && (c.from != "" || c.to != "") {
		fmt.Fprintln(os.Stderr, "-trip cannot be used with -from or -to")
		return subcommands.ExitUsageError
	}

	return withSession(ctx, func(s *caravan.Session) error {
		var t caravan.Trade
		var err error
		if c.trip {
			t, err = s.FinishTrip(c.price.value, c.packs)
		} else {
			t, err = s.RecordTrade(caravan.TradeRequest{From: c.from, To: c.to, PricePerPack: c.price.value, Packs: c.packs})
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Recorded trade %s: %d × %s = %s (id %s)\n", t.Route(), t.PacksCount, t.PricePerPack, t.Profit, t.ID)
		return nil
	})
}

type expenseCmd struct {
	label     string
	remaining copperFlag
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "record money spent on resources" }
func (*expenseCmd) Usage() string {
	return `cvn expense [-label <label>] -remaining <amount>

  Records an expense from the balance left after the purchase: the amount
  spent is the current balance minus the remaining balance.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.label, "label", "", "what was bought (default \""+caravan.DefaultExpenseLabel+"\")")
	f.Var(&c.remaining, "remaining", "balance left after the purchase")
}

func (c *expenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.remaining.set {
		fmt.Fprintln(os.Stderr, "-remaining is required")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *caravan.Session) error {
		e, err := s.RecordExpense(caravan.ExpenseRequest{Label: c.label, Remaining: c.remaining.value})
		if errors.Is(err, caravan.ErrNonPositiveExpense) {
			return fmt.Errorf("the remaining balance must be lower than the current balance %s", s.Balance())
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Recorded expense %q: %s (id %s)\n", e.Label, e.Amount, e.ID)
		return nil
	})
}

type sellCoinCmd struct {
	amount copperFlag
	usd    decimalFlag
}

func (*sellCoinCmd) Name() string     { return "sell-coin" }
func (*sellCoinCmd) Synopsis() string { return "record in-game gold sold for real money" }
func (*sellCoinCmd) Usage() string {
	return `cvn sell-coin -amount <amount> [-usd <price>]

  Records a coin sale: the amount leaves the balance, the dollars received
  are used to estimate the value of your time.
`
}

func (c *sellCoinCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.amount, "amount", "amount of in-game money sold")
	f.Var(&c.usd, "usd", "dollars received")
}

func (c *sellCoinCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.amount.set {
		fmt.Fprintln(os.Stderr, "-amount is required")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *caravan.Session) error {
		sale, err := s.RecordCoinSale(caravan.CoinSaleRequest{Amount: c.amount.value, USDPrice: c.usd.value})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Recorded coin sale: %s for %s (id %s)\n", sale.Amount, sale.Proceeds(), sale.ID)
		return nil
	})
}

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete records" }
func (*deleteCmd) Usage() string {
	return `cvn delete <id>...

  Deletes records by id, whatever their type. Ids are listed by cvn history.
`
}

func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one id is required")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *caravan.Session) error {
		var errs []error
		for _, id := range f.Args() {
			if !s.Delete(id) {
				errs = append(errs, fmt.Errorf("%w: %q", caravan.ErrNotFound, id))
				continue
			}
			fmt.Fprintf(stdout, "Deleted %s\n", id)
		}
		return errors.Join(errs...)
	})
}

type editCmd struct {
	id     string
	from   string
	to     string
	price  copperFlag
	packs  int
	label  string
	amount copperFlag
	usd    decimalFlag
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "fix a record" }
func (*editCmd) Usage() string {
	return `cvn edit -id <id> [flags]

  Changes the fields of a record. Only the flags given are changed:
    trades:     -from -to -price -packs
    expenses:   -label -amount
    coin sales: -amount -usd
  The profit of a trade is recomputed.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "id of the record")
	f.StringVar(&c.from, "from", "", "departure node of a trade")
	f.StringVar(&c.to, "to", "", "destination node of a trade")
	f.Var(&c.price, "price", "price per pack of a trade")
	f.IntVar(&c.packs, "packs", 0, "number of packs of a trade")
	f.StringVar(&c.label, "label", "", "label of an expense")
	f.Var(&c.amount, "amount", "amount of an expense or a coin sale")
	f.Var(&c.usd, "usd", "dollars received for a coin sale")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "-id is required")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *caravan.Session) error {
		r, ok := s.Find(c.id)
		if !ok {
			return fmt.Errorf("%w: %q", caravan.ErrNotFound, c.id)
		}
		var err error
		switch v := r.(type) {
		case caravan.Trade:
			if c.from != "" {
				v.FromNode = c.from
			}
			if c.to != "" {
				v.ToNode = c.to
			}
			if c.price.set {
				v.PricePerPack = c.price.value
			}
			if c.packs > 0 {
				v.PacksCount = c.packs
			}
			err = s.UpdateTrade(v)
		case caravan.Expense:
			if c.label != "" {
				v.Label = c.label
			}
			if c.amount.set {
				v.Amount = c.amount.value
			}
			err = s.UpdateExpense(v)
		case caravan.CoinSale:
			if c.amount.set {
				v.Amount = c.amount.value
			}
			if c.usd.set {
				v.USDPrice = c.usd.value
			}
			err = s.UpdateCoinSale(v)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Updated %s %s\n", r.What(), c.id)
		return nil
	})
}

type nodesCmd struct {
	add    string
	region string
}

func (*nodesCmd) Name() string     { return "nodes" }
func (*nodesCmd) Synopsis() string { return "list or add nodes" }
func (*nodesCmd) Usage() string {
	return `cvn nodes [-add <name> -region <region>]

  Lists the known nodes, or adds a custom node.
`
}

func (c *nodesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.add, "add", "", "name of a custom node to add")
	f.StringVar(&c.region, "region", "", "region of the node to add")
}

func (c *nodesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *caravan.Session) error {
		if c.add != "" {
			n, err := s.AddNode(c.add, c.region)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Added node %s (%s)\n", n.Name, n.Region)
			return nil
		}
		printMarkdown(renderer.NodesMarkdown(s.Ledger.Nodes(), s.Ledger.CustomNodes()))
		return nil
	})
}
