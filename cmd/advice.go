package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/caravan/advisor"
	"github.com/etnz/caravan/config"
	"github.com/google/subcommands"
)

// newModel creates the model consulted for advice.
var newModel = func(ctx context.Context) (advisor.Model, error) {
	if settings.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%s is not set", config.EnvGeminiAPIKey)
	}
	return advisor.NewGemini(ctx, settings.GeminiAPIKey, settings.GeminiModel)
}

// snapshot reads the ledger without keeping it open during the request.
func snapshot(ctx context.Context) (advisor.Snapshot, error) {
	s, closeSession, err := OpenSession(ctx)
	if err != nil {
		return advisor.Snapshot{}, err
	}
	snap := advisor.SnapshotOf(s)
	return snap, closeSession(ctx)
}

type adviseCmd struct{}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "ask the AI advisor about your trades" }
func (*adviseCmd) Usage() string {
	return `cvn advise

  Sends the most recent records of the shift to the AI advisor and prints
  its analysis. See cvn topic advice.
`
}

func (*adviseCmd) SetFlags(*flag.FlagSet) {}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := snapshot(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if snap.Empty() {
		printMarkdown(advisor.NoDataMessage + "\n")
		return subcommands.ExitSuccess
	}

	m, err := newModel(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(advisor.New(m, settings.AdviceLanguage).RequestAdvice(ctx, snap) + "\n")
	return subcommands.ExitSuccess
}

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with the AI advisor about your trades" }
func (*assistCmd) Usage() string {
	return `cvn assist [<question>]

  Starts a conversation with the AI advisor about the records of the shift.
  The question given on the command line is asked first. Type 'bye' to exit.
`
}

func (*assistCmd) SetFlags(*flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}

	snap, err := snapshot(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	m, err := newModel(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing the advisor:", err)
		return subcommands.ExitFailure
	}

	conv := advisor.New(m, settings.AdviceLanguage).StartConversation(ctx, snap)
	print := func(answer string) { printMarkdown(answer + "\n") }
	if err := advisor.Run(ctx, conv, stdout, stdin, print, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Advisor failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

