package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/caravan"
	"github.com/google/subcommands"
)

type shiftCmd struct {
	start copperFlag
	stop  bool
}

func (*shiftCmd) Name() string     { return "shift" }
func (*shiftCmd) Synopsis() string { return "start, stop or show the shift" }
func (*shiftCmd) Usage() string {
	return `cvn shift [-start <balance> | -stop]

  Without flags, shows the shift in progress.
  -start opens a new shift now with the given wallet balance, replacing any
  shift in progress. -stop closes the shift, records are kept.
`
}

func (c *shiftCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.start, "start", "start a shift with this balance")
	f.BoolVar(&c.stop, "stop", false, "stop the shift")
}

func (c *shiftCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.start.set && c.stop {
		fmt.Fprintln(os.Stderr, "-start and -stop cannot be used together")
		return subcommands.ExitUsageError
	}
	return withSession(ctx, func(s *caravan.Session) error {
		switch {
		case c.start.set:
			s.StartShift(c.start.value)
		case c.stop:
			s.StopShift()
		}
		fmt.Fprintln(stdout, describeShift(s))
		return nil
	})
}

func describeShift(s *caravan.Session) string {
	switch v := s.Shift().(type) {
	case caravan.Active:
		return fmt.Sprintf("Shift started on %s with %s, balance %s.",
			v.Start.Local().Format("2006-01-02 15:04"), v.StartingBalance, s.Balance())
	default:
		return fmt.Sprintf("No shift in progress, balance %s.", s.Balance())
	}
}
