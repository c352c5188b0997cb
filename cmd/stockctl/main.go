// Command stockctl runs the refresh job and edits the watchlist from a terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&refreshCmd{}, "quotes")
	commander.Register(&listCmd{}, "quotes")
	commander.Register(&showCmd{}, "quotes")

	commander.Register(&addCmd{}, "watchlist")
	commander.Register(&removeCmd{}, "watchlist")
	commander.Register(&modeCmd{}, "watchlist")

	commander.Register(&tokenCmd{}, "auth")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
