package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/renderer"
	"github.com/google/subcommands"
)

type tripCmd struct {
	start  bool
	from   string
	to     string
	cancel bool
	watch  bool
}

func (*tripCmd) Name() string     { return "trip" }
func (*tripCmd) Synopsis() string { return "time a caravan on its way" }
func (*tripCmd) Usage() string {
	return `cvn trip [-start -from <node> -to <node> | -cancel | -watch]

  Without flags, shows the trip in progress.
  -start starts the timer, record the arrival with cvn trade -trip.
  -cancel drops the trip. -watch refreshes the elapsed time every second until
  interrupted.
`
}

func (c *tripCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.start, "start", false, "start a trip")
	f.StringVar(&c.from, "from", "", "departure node")
	f.StringVar(&c.to, "to", "", "destination node")
	f.BoolVar(&c.cancel, "cancel", false, "cancel the trip in progress")
	f.BoolVar(&c.watch, "watch", false, "refresh the elapsed time every second")
}

func (c *tripCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.start && c.cancel {
		fmt.Fprintln(os.Stderr, "-start and -cancel cannot be used together")
		return subcommands.ExitUsageError
	}

	var trip *caravan.Trip
	status := withSession(ctx, func(s *caravan.Session) error {
		switch {
		case c.start:
			if _, err := s.StartTrip(c.from, c.to); err != nil {
				return err
			}
		case c.cancel:
			if err := s.CancelTrip(); err != nil {
				return err
			}
		}
		trip = s.Trip()
		return nil
	})
	if status != subcommands.ExitSuccess {
		return status
	}

	if !c.watch || trip == nil {
		printMarkdown(renderer.TripMarkdown(trip, now()))
		return subcommands.ExitSuccess
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		fmt.Fprintf(stdout, "\r%s  %s", trip.Route(), caravan.FormatElapsed(trip.Elapsed(now())))
		select {
		case <-ctx.Done():
			fmt.Fprintln(stdout)
			return subcommands.ExitSuccess
		case <-ticker.C:
		}
	}
}
