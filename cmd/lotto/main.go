package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config  string `short:"c" default:"lotto.hcl" help:"Path to HCL configuration file"`
	Seed    int32  `default:"0" help:"Random seed (0 for random)"`
	Players int    `default:"0" help:"Number of CPU players (0 for random)"`
	Debug   bool   `short:"d" help:"Enable debug logging"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play the lottery interactively"`
	Simulate SimulateCmd      `cmd:"" help:"Play rounds headless with a fixed betting strategy"`
	Draw     DrawCmd          `cmd:"" help:"Print the reproducible draw for a seed"`
	Report   ReportCmd        `cmd:"" help:"Summarise a saved round history"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lotto"),
		kong.Description("A console lottery against CPU players"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
