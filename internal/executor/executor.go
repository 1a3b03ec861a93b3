package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcworld/mctrimmer/internal/entities"
	"github.com/mcworld/mctrimmer/internal/mcaselector"
	"github.com/mcworld/mctrimmer/internal/mclog"
	"github.com/mcworld/mctrimmer/internal/pipeline"
	"github.com/mcworld/mctrimmer/internal/region"
	"github.com/mcworld/mctrimmer/internal/world"
	"github.com/mcworld/mctrimmer/internal/worker"
)

// Executor runs one Pipeline's command_chain against the chunk universe of
// a single input_folder.
type Executor struct {
	manager *world.Manager
	names   []string
	threads int
	sel     *Selection
}

// New returns an Executor over the regions named in names, owned by
// manager, using up to threads concurrent workers for gathering and
// expansion.
func New(manager *world.Manager, names []string, threads int) *Executor {
	return &Executor{manager: manager, names: names, threads: threads}
}

// regionName formats the r.<x>.<z>.mca file name for a region coordinate.
func regionName(rx, rz int32) string {
	return fmt.Sprintf("r.%d.%d.mca", rx, rz)
}

// Gather loads every region once to build the available chunk universe,
// then seeds the selection per start. Per-chunk InhabitedTime failures are
// swallowed; per-region I/O failures are logged and excluded from the
// universe, but do not abort the run.
func (e *Executor) Gather(ctx context.Context, start pipeline.Start) error {
	results := worker.Run(ctx, e.threads, e.names, func(ctx context.Context, name string) ([]ChunkMetadata, error) {
		r, err := e.manager.OpenFile(name)
		if err != nil {
			return nil, err
		}
		var out []ChunkMetadata
		for _, entry := range r.Iterate() {
			if entry.Chunk.Empty() {
				continue
			}
			inhabited, err := entry.Chunk.InhabitedTime()
			if err != nil {
				continue
			}
			x, err := entry.Chunk.XPos()
			if err != nil {
				continue
			}
			z, err := entry.Chunk.ZPos()
			if err != nil {
				continue
			}
			out = append(out, ChunkMetadata{X: x, Y: z, InhabitedTime: inhabited})
		}
		return out, nil
	})

	var available []ChunkMetadata
	for res := range results {
		if res.Err != nil {
			mclog.Errorf("gather metadata: %v", res.Err)
			continue
		}
		available = append(available, res.Value...)
	}
	e.sel = NewSelection(available, start)
	return nil
}

// Run executes p's command_chain against the previously gathered universe,
// logging each step's selection-size delta.
func (e *Executor) Run(ctx context.Context, p pipeline.Pipeline) error {
	if e.sel == nil {
		if err := e.Gather(ctx, p.StartWith); err != nil {
			return err
		}
	}
	for i, step := range p.CommandChain {
		before := e.sel.Size()
		if err := e.runStep(ctx, step); err != nil {
			return fmt.Errorf("executor: step %d (%s): %w", i, step.Command, err)
		}
		delta := e.sel.Size() - before
		mclog.Infof("step %d (%s): selection size delta %+d (now %d)", i, step.Command, delta, e.sel.Size())
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, step pipeline.Step) error {
	switch step.Command {
	case pipeline.CmdFilterSelection:
		e.sel.Filter(step.Condition)
		return nil
	case pipeline.CmdExtendSelection:
		e.sel.Extend(step.Condition)
		return nil
	case pipeline.CmdInvertSelection:
		e.sel.Invert()
		return nil
	case pipeline.CmdSelectAffectedRegions:
		e.sel.SelectAffectedRegions()
		return nil
	case pipeline.CmdRadiallyExpandSelection:
		return e.sel.RadiallyExpand(ctx, e.threads, step.Radius)
	case pipeline.CmdSaveSelection:
		return e.saveSelection(step.MCASelectorCSVFile)
	case pipeline.CmdDeleteSelectedChunks:
		return e.deleteSelected(ctx, step.Backup)
	case pipeline.CmdMoveSelected:
		return e.moveSelected(ctx, step.Destination, step.EntireRegion)
	default:
		return fmt.Errorf("unhandled command %q", step.Command)
	}
}

func (e *Executor) saveSelection(path string) error {
	selected := e.sel.Selected()
	coords := make([]mcaselector.Coordinate, len(selected))
	for i, m := range selected {
		coords[i] = mcaselector.Coordinate{X: m.X, Y: m.Y}
	}
	return mcaselector.WriteFile(path, coords)
}

// groupByRegion partitions chunks by the region file name that owns them.
func groupByRegion(chunks []ChunkMetadata) map[string][]ChunkMetadata {
	out := make(map[string][]ChunkMetadata)
	for _, m := range chunks {
		rx, rz := m.RegionCoord()
		name := regionName(rx, rz)
		out[name] = append(out[name], m)
	}
	return out
}

// deleteSelected evicts every selected chunk from its owning region,
// backing up per backup.mode first, then removes the evicted chunks from
// the selection (they no longer exist in either set).
func (e *Executor) deleteSelected(ctx context.Context, backup pipeline.Backup) error {
	byRegion := groupByRegion(e.sel.Selected())
	names := make([]string, 0, len(byRegion))
	for name := range byRegion {
		names = append(names, name)
	}

	backupMgr := e.manager
	if backup.Mode == pipeline.BackupEntireRegion && backup.Destination != "" {
		backupMgr = e.manager.WithBackupRoot(backup.Destination)
	}

	results := worker.Run(ctx, e.threads, names, func(ctx context.Context, name string) (struct{}, error) {
		chunks := byRegion[name]
		r, err := e.manager.OpenFile(name)
		if err != nil {
			return struct{}{}, err
		}
		if backup.Mode == pipeline.BackupOnlyAffectedChunks && backup.Destination != "" {
			if err := backupAffectedChunks(r, chunks, backup.Destination, name); err != nil {
				return struct{}{}, err
			}
		}
		for _, m := range chunks {
			r.ResetChunk(m.LocalIndex())
		}
		if err := backupMgr.SaveToFile(r, name); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	for res := range results {
		if res.Err != nil {
			mclog.Errorf("delete_selected_chunks: %v", res.Err)
		}
	}

	for c := range e.sel.selected {
		delete(e.sel.available, c)
		delete(e.sel.selected, c)
	}
	return nil
}

// backupAffectedChunks writes a region file containing only the listed
// chunks (and their paired entities) to destination/region and
// destination/entities, preserving the originals before they are evicted.
func backupAffectedChunks(r *world.Region, chunks []ChunkMetadata, destination, name string) error {
	if err := os.MkdirAll(filepath.Join(destination, "region"), 0o755); err != nil {
		return fmt.Errorf("backup affected chunks: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(destination, "entities"), 0o755); err != nil {
		return fmt.Errorf("backup affected entities: %w", err)
	}
	backupChunks := region.NewEmptyFile()
	backupEntities := region.NewEmptyFile()
	for _, m := range chunks {
		idx := m.LocalIndex()
		if c := r.Chunks.Chunk(idx); !c.Empty() {
			backupChunks.AdoptChunk(idx, c)
		}
		if ent := r.Entities.Entity(idx); !ent.Empty() {
			backupEntities.AdoptChunk(idx, ent)
		}
	}
	if err := backupChunks.SaveToFile(filepath.Join(destination, "region", name)); err != nil {
		return fmt.Errorf("backup affected chunks: %w", err)
	}
	if err := backupEntities.SaveToFile(filepath.Join(destination, "entities", name)); err != nil {
		return fmt.Errorf("backup affected entities: %w", err)
	}
	return nil
}

// openDestination opens name from dst, substituting an empty region when
// the file doesn't exist yet. move_selected's usual target is a fresh or
// sparse world tree, so a missing destination region is the common case,
// not an error.
func openDestination(dst *world.Manager, name string) (*world.Region, error) {
	r, err := dst.OpenFile(name)
	if err == nil {
		return r, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return &world.Region{FileName: name, Chunks: region.NewEmptyFile(), Entities: entities.NewEmpty()}, nil
	}
	return nil, err
}

// moveSelected relocates selected chunks (or, if entireRegion, every
// region that owns a selected chunk) into destination, removing them from
// the source tree.
func (e *Executor) moveSelected(ctx context.Context, destination string, entireRegion bool) error {
	byRegion := groupByRegion(e.sel.Selected())
	dstManager := world.NewManager(world.NewPaths(destination, "", ""))

	names := make([]string, 0, len(byRegion))
	for name := range byRegion {
		names = append(names, name)
	}

	results := worker.Run(ctx, e.threads, names, func(ctx context.Context, name string) (struct{}, error) {
		chunks := byRegion[name]
		src, err := e.manager.OpenFile(name)
		if err != nil {
			return struct{}{}, err
		}

		if entireRegion {
			dst, err := openDestination(dstManager, name)
			if err != nil {
				return struct{}{}, err
			}
			allIndices := make(map[int]struct{})
			for _, idx := range src.Chunks.Indices() {
				allIndices[idx] = struct{}{}
			}
			for _, idx := range src.Entities.Indices() {
				allIndices[idx] = struct{}{}
			}
			for idx := range allIndices {
				dst.Chunks.AdoptChunk(idx, src.Chunks.Chunk(idx))
				dst.Entities.AdoptChunk(idx, src.Entities.Entity(idx))
				src.ResetChunk(idx)
			}
			if err := dstManager.SaveToFile(dst, name); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, e.manager.SaveToFile(src, name)
		}

		dst, err := openDestination(dstManager, name)
		if err != nil {
			return struct{}{}, err
		}
		for _, m := range chunks {
			idx := m.LocalIndex()
			dst.Chunks.AdoptChunk(idx, src.Chunks.Chunk(idx))
			dst.Entities.AdoptChunk(idx, src.Entities.Entity(idx))
			src.ResetChunk(idx)
		}
		if err := dstManager.SaveToFile(dst, name); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, e.manager.SaveToFile(src, name)
	})
	for res := range results {
		if res.Err != nil {
			mclog.Errorf("move_selected: %v", res.Err)
		}
	}

	for c := range e.sel.selected {
		delete(e.sel.available, c)
		delete(e.sel.selected, c)
	}
	return nil
}

