package main

import (
	"context"
	"flag"
	"os"
	"runtime"

	"github.com/google/subcommands"

	"github.com/mcworld/mctrimmer/internal/executor"
	"github.com/mcworld/mctrimmer/internal/mclog"
	"github.com/mcworld/mctrimmer/internal/pipeline"
	"github.com/mcworld/mctrimmer/internal/world"
)

// Pipeline implements the `pipeline` command: parse and run a data-driven
// chain of selection steps described by a JSON configuration file.
type Pipeline struct {
	validate       string
	generateSchema string
}

func (*Pipeline) Name() string { return "pipeline" }

func (*Pipeline) Synopsis() string {
	return "Validate and run a pipeline configuration file."
}

func (*Pipeline) Usage() string {
	return `pipeline --validate <file.json>
pipeline --generate-schema <file.json>

Validate parses and runs every pipeline described in <file.json>; a
malformed document is a fatal configuration error reported before any
region work begins. generate-schema is not implemented by this build: the
core of this tool is the pipeline executor, not a schema emitter.

`
}

func (p *Pipeline) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.validate, "validate", "", "Path to a pipeline configuration JSON file to validate and run.")
	f.StringVar(&p.generateSchema, "generate-schema", "", "(unsupported) path to write a JSON schema for the configuration format.")
}

func (p *Pipeline) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.generateSchema != "" {
		mclog.Error("--generate-schema is not supported by this build.")
		return subcommands.ExitFailure
	}
	if p.validate == "" {
		mclog.Error("--validate <file.json> is required.")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(p.validate)
	if err != nil {
		mclog.Errorf("pipeline: %v", err)
		return subcommands.ExitFailure
	}
	config, err := pipeline.Load(data)
	if err != nil {
		mclog.Errorf("pipeline: %v", err)
		return subcommands.ExitUsageError
	}

	for i, pl := range config {
		if err := runPipeline(ctx, pl); err != nil {
			mclog.Errorf("pipeline: entry %d: %v", i, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func runPipeline(ctx context.Context, pl pipeline.Pipeline) error {
	threads := pl.Threads
	if threads <= 0 {
		threads = runtime.NumCPU() - 1
		if threads < 1 {
			threads = 1
		}
	}

	paths := world.NewPaths(pl.InputFolder, "", "")
	manager := world.NewManager(paths)
	names, err := world.RegionFileNames(paths.InpRegion)
	if err != nil {
		return err
	}

	ex := executor.New(manager, names, threads)
	mclog.Infof("pipeline: running %s with %d region(s), %d worker(s)", pl.InputFolder, len(names), threads)
	return ex.Run(ctx, pl)
}
