// mctrimmer prunes and transforms Minecraft-compatible region files:
// evicting chunks below an inhabited-time threshold, or running a
// data-driven pipeline of selection steps over a world.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/mcworld/mctrimmer/internal/mclog"
)

var verbose = flag.Bool("v", false, "Enable debug logging.")
var quiet = flag.Bool("q", false, "Only log warnings and errors.")

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&Trim{}, "")
	subcommands.Register(&Pipeline{}, "")

	flag.Parse()
	switch {
	case *verbose:
		mclog.SetMinLevel(mclog.DebugLevel)
	case *quiet:
		mclog.SetMinLevel(mclog.WarnLevel)
	}

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
