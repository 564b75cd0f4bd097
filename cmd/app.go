// Package cmd implements the CLI application to keep a caravan ledger.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/config"
	"github.com/etnz/caravan/storage"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands() {
		c.Register(cmd.Command, cmd.Group)
	}
}

// Command is a subcommand and the group it is listed in.
type Command struct {
	subcommands.Command
	Group string
}

// Commands returns all the subcommands.
func Commands() []Command {
	return []Command{
		{&tradeCmd{}, "records"},
		{&expenseCmd{}, "records"},
		{&sellCoinCmd{}, "records"},
		{&editCmd{}, "records"},
		{&deleteCmd{}, "records"},
		{&nodesCmd{}, "records"},

		{&shiftCmd{}, "shift"},
		{&tripCmd{}, "shift"},

		{&dashboardCmd{}, "reports"},
		{&historyCmd{}, "reports"},
		{&routesCmd{}, "reports"},
		{&seriesCmd{}, "reports"},

		{&adviseCmd{}, "advice"},
		{&assistCmd{}, "advice"},

		{&exportCmd{}, "data"},
		{&importCmd{}, "data"},
		{&serveCmd{}, "data"},

		{&topicCmd{}, "help"},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataDir   = flag.String("data-dir", "", "Folder storing the ledger (default $CARAVAN_DATA_DIR or .caravan)")
	redisAddr = flag.String("redis", "", "Redis address storing the ledger instead of the data folder (default $CARAVAN_REDIS_ADDRESS)")
	Verbose   = flag.Bool("v", false, "Verbose logging")
)

// EnvTestingNow freezes the clock, in "2006-01-02 15:04:05" local time.
const EnvTestingNow = "CARAVAN_TESTING_NOW"

var (
	settings = config.Settings{DataDir: config.DefaultDataDir, Rates: caravan.DefaultRates}
	now      = time.Now
	stdout   io.Writer = os.Stdout
	stdin    io.Reader = os.Stdin
)

// Setup loads the configuration and sets up logging. It must be called once
// the command line flags are parsed.
func Setup() error {
	s, err := config.Load()
	if err != nil {
		return err
	}
	if *dataDir != "" {
		s.DataDir = *dataDir
	}
	if *redisAddr != "" {
		s.RedisAddress = *redisAddr
	}
	level := s.LogLevel
	if *Verbose {
		level = "debug"
	}
	if err := config.SetupLogger(os.Stderr, level, s.LogFormat); err != nil {
		return err
	}
	if v := os.Getenv(EnvTestingNow); v != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTestingNow, err)
		}
		now = func() time.Time { return t }
	}
	settings = s
	return nil
}

// openBackend returns the storage selected by the settings.
func openBackend() (storage.Backend, func() error) {
	if settings.RedisAddress != "" {
		r := storage.NewRedis(settings.RedisAddress, settings.RedisPrefix)
		return r, r.Close
	}
	return storage.NewFile(settings.DataDir), func() error { return nil }
}

// OpenSession opens the ledger. CloseSession must be called to persist the
// changes.
func OpenSession(ctx context.Context) (*caravan.Session, func(context.Context) error, error) {
	b, closeBackend := openBackend()
	s, err := caravan.Open(ctx, b, caravan.WithClock(func() time.Time { return now() }))
	if err != nil {
		closeBackend()
		return nil, nil, fmt.Errorf("cannot open ledger: %w", err)
	}
	closeSession := func(ctx context.Context) error {
		defer closeBackend()
		if err := s.Flush(ctx); err != nil {
			return fmt.Errorf("cannot save ledger: %w", err)
		}
		logrus.WithField("storage", describeStorage()).Debug("ledger saved")
		return nil
	}
	return s, closeSession, nil
}

func describeStorage() string {
	if settings.RedisAddress != "" {
		return "redis://" + settings.RedisAddress
	}
	return settings.DataDir
}

// withSession opens the ledger, runs f and saves the ledger if f succeeds.
func withSession(ctx context.Context, f func(s *caravan.Session) error) subcommands.ExitStatus {
	s, closeSession, err := OpenSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := f(s); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := closeSession(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
