package cmd

import (
	"flag"
	"io"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the cvn command line.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"data-dir": predict.Dirs("*"),
			"redis":    predict.Something,
			"v":        predict.Nothing,
		},
	}
	for _, c := range Commands() {
		root.Sub[c.Name()] = completeCommand(c)
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}

func completeCommand(c subcommandsFlags) *complete.Command {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.SetFlags(fs)

	cc := &complete.Command{Flags: map[string]complete.Predictor{}}
	fs.VisitAll(func(f *flag.Flag) {
		cc.Flags[f.Name] = predictFlag(f)
	})
	switch c.Name() {
	case "topic":
		topics, _ := docs.GetAllTopics()
		cc.Args = predict.Set(topics)
	case "import":
		cc.Args = predict.Files("*.json")
	}
	return cc
}

// subcommandsFlags is the part of a subcommand used for completion.
type subcommandsFlags interface {
	Name() string
	SetFlags(*flag.FlagSet)
}

func predictFlag(f *flag.Flag) complete.Predictor {
	if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
		return predict.Nothing
	}
	switch f.Name {
	case "from", "to":
		names := make([]string, 0, len(caravan.DefaultNodes))
		for _, n := range caravan.DefaultNodes {
			names = append(names, n.Name)
		}
		return predict.Set(names)
	case "type":
		return predict.Set{string(caravan.KindSale), string(caravan.KindExpense), string(caravan.KindCoinSale)}
	case "o":
		return predict.Files("*.json")
	}
	return predict.Something
}
