package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/caravan"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the whole ledger to a JSON document" }
func (*exportCmd) Usage() string {
	return `cvn export [-o <file>]

  Writes all records, custom nodes and the shift to a JSON document, on the
  standard output by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *caravan.Session) error {
		doc := s.Export()
		if c.output == "" {
			_, err := doc.WriteTo(stdout)
			return err
		}
		out, err := os.Create(c.output)
		if err != nil {
			return err
		}
		if _, err := doc.WriteTo(out); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d trades, %d expenses and %d coin sales to %s\n",
			len(doc.Trades), len(doc.Expenses), len(doc.CoinSales), c.output)
		return nil
	})
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSON document" }
func (*importCmd) Usage() string {
	return `cvn import <file>

  Replaces the collections present in the document: trades, expenses, coin
  sales, custom nodes and the shift. A bare list of trades is accepted too.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one file is required")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *caravan.Session) error {
		in, err := os.Open(f.Arg(0))
		if err != nil {
			return err
		}
		defer in.Close()
		fields, err := s.Import(in)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported %s from %s\n", strings.Join(fields, ", "), f.Arg(0))
		return nil
	})
}
