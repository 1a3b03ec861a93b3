package main

import (
	"context"
	"flag"
	"fmt"
	"runtime"

	"github.com/google/subcommands"

	"github.com/mcworld/mctrimmer/internal/mclog"
	"github.com/mcworld/mctrimmer/internal/region"
	"github.com/mcworld/mctrimmer/internal/trimcriteria"
	"github.com/mcworld/mctrimmer/internal/worker"
	"github.com/mcworld/mctrimmer/internal/world"
)

// Trim implements the `trim` command: evict every chunk whose
// InhabitedTime is at or below a built-in criteria threshold.
type Trim struct {
	inputRegion  string
	outputRegion string
	backup       string
	parallel     int
	criteria     string
	skipConfirm  bool
}

func (*Trim) Name() string { return "trim" }

func (*Trim) Synopsis() string {
	return "Evict chunks below an inhabited-time threshold from a world."
}

func (*Trim) Usage() string {
	return `trim --input-region <dir> [--output-region <dir>] [--backup <dir>] [--parallel <n>] --criteria <key>

Trim removes chunks whose InhabitedTime is at or below the threshold named
by --criteria from every region file under <dir>/region (and its sibling
<dir>/entities). Without --output-region the world is edited in place;
without --backup no copy of the original region/entities files is kept.
--backup always takes a directory argument; it has no bare form.

Criteria keys: ` + fmt.Sprint(trimcriteria.Keys()) + `

`
}

func (t *Trim) SetFlags(f *flag.FlagSet) {
	f.StringVar(&t.inputRegion, "input-region", "", "World directory to read (contains region/ and entities/).")
	f.StringVar(&t.outputRegion, "output-region", "", "World directory to write (defaults to --input-region, i.e. in place).")
	f.StringVar(&t.backup, "backup", "", "Directory to back up originals into before trimming (empty disables backup).")
	f.IntVar(&t.parallel, "parallel", 0, "Number of concurrent workers (default cores-1).")
	f.StringVar(&t.criteria, "criteria", "", "Built-in trim criteria key, e.g. inhabited_time<1m.")
	f.BoolVar(&t.skipConfirm, "skip_confirmation", false, "Do not ask for confirmation before an unbacked-up in-place trim.")
}

func (t *Trim) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if t.inputRegion == "" {
		mclog.Error("--input-region is required.")
		return subcommands.ExitUsageError
	}
	threshold, err := trimcriteria.Threshold(t.criteria)
	if err != nil {
		mclog.Errorf("%v", err)
		return subcommands.ExitUsageError
	}

	inPlace := t.outputRegion == "" || t.outputRegion == t.inputRegion
	if inPlace && t.backup == "" && !t.skipConfirm {
		confirm()
	}

	paths := world.NewPaths(t.inputRegion, t.outputRegion, t.backup)
	manager := world.NewManager(paths)

	names, err := world.RegionFileNames(paths.InpRegion)
	if err != nil {
		mclog.Errorf("trim: %v", err)
		return subcommands.ExitFailure
	}

	threads := t.parallel
	if threads <= 0 {
		threads = runtime.NumCPU() - 1
		if threads < 1 {
			threads = 1
		}
	}

	results := worker.Run(ctx, threads, names, func(ctx context.Context, name string) (struct{}, error) {
		r, err := manager.OpenFile(name)
		if err != nil {
			return struct{}{}, err
		}
		r.Trim(func(chunk, _ *region.Chunk) bool {
			if chunk.Empty() {
				return false
			}
			inhabited, err := chunk.InhabitedTime()
			if err != nil {
				return false
			}
			return inhabited <= threshold
		})
		return struct{}{}, manager.SaveToFile(r, name)
	})

	failed := false
	for res := range results {
		if res.Err != nil {
			mclog.Errorf("trim: %v", res.Err)
			failed = true
		}
	}
	if failed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
