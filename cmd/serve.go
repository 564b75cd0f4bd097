package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/caravan/advisor"
	"github.com/etnz/caravan/server"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type serveCmd struct {
	listen string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the ledger over HTTP" }
func (*serveCmd) Usage() string {
	return `cvn serve [-listen <addr>]

  Serves the ledger as a JSON API for dashboards and charts until
  interrupted. See cvn topic server.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.listen, "listen", "", "address to listen on (default $CARAVAN_LISTEN or :8080)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	addr := c.listen
	if addr == "" {
		addr = settings.Listen
	}

	s, closeSession, err := OpenSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	var adv *advisor.Advisor
	if m, err := newModel(ctx); err != nil {
		logrus.WithError(err).Warn("advice disabled")
	} else {
		adv = advisor.New(m, settings.AdviceLanguage)
	}

	if !*Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	runErr := server.New(s, settings.Rates, adv).Run(ctx, addr)
	// The server flushes after each change, this only releases the storage.
	if err := closeSession(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Server failed:", runErr)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
