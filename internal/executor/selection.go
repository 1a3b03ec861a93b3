package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mcworld/mctrimmer/internal/pipeline"
)

// radialBatchSize is the number of selected coordinates handed to a single
// neighbour-computation worker. It is independent of the per-batch name
// count internal/worker uses for region metadata gathering.
const radialBatchSize = 500

// Selection is the executor's working set: every chunk discovered during
// startup (available) and the subset currently chosen by the running
// pipeline (selected). selected is always a subset of available.
type Selection struct {
	available map[coord]ChunkMetadata
	selected  map[coord]struct{}
}

// NewSelection seeds a Selection from the gathered universe, selecting
// everything or nothing per start.
func NewSelection(available []ChunkMetadata, start pipeline.Start) *Selection {
	s := &Selection{
		available: make(map[coord]ChunkMetadata, len(available)),
		selected:  make(map[coord]struct{}),
	}
	for _, m := range available {
		s.available[m.coord()] = m
	}
	if start == pipeline.StartAllSelected {
		for c := range s.available {
			s.selected[c] = struct{}{}
		}
	}
	return s
}

// Size returns the number of currently selected chunks.
func (s *Selection) Size() int { return len(s.selected) }

// Selected returns the currently selected chunks, in no particular order.
func (s *Selection) Selected() []ChunkMetadata {
	out := make([]ChunkMetadata, 0, len(s.selected))
	for c := range s.selected {
		out = append(out, s.available[c])
	}
	return out
}

// Filter reduces selected to the subset matching cond:
// selected <- { c in selected | cond(c) }.
func (s *Selection) Filter(cond pipeline.Condition) {
	for c := range s.selected {
		if !cond.Matches(s.available[c].InhabitedTime) {
			delete(s.selected, c)
		}
	}
}

// Extend grows selected with every available chunk matching cond:
// selected <- selected ∪ { c in available | cond(c) }.
func (s *Selection) Extend(cond pipeline.Condition) {
	for c, m := range s.available {
		if cond.Matches(m.InhabitedTime) {
			s.selected[c] = struct{}{}
		}
	}
}

// Invert replaces selected with available \ selected.
func (s *Selection) Invert() {
	next := make(map[coord]struct{}, len(s.available)-len(s.selected))
	for c := range s.available {
		if _, ok := s.selected[c]; !ok {
			next[c] = struct{}{}
		}
	}
	s.selected = next
}

// SelectAffectedRegions extends selected to every available chunk sharing
// a region with an already-selected chunk.
func (s *Selection) SelectAffectedRegions() {
	regions := make(map[coord]struct{})
	for c := range s.selected {
		m := s.available[c]
		rx, rz := m.RegionCoord()
		regions[coord{rx, rz}] = struct{}{}
	}
	for c, m := range s.available {
		rx, rz := m.RegionCoord()
		if _, ok := regions[coord{rx, rz}]; ok {
			s.selected[c] = struct{}{}
		}
	}
}

// kernel enumerates K(r) = {(dx, dy) : dx^2+dy^2 <= r^2} \ {(0,0)}.
func kernel(r int) []coord {
	var out []coord
	r32 := int32(r)
	for dx := -r32; dx <= r32; dx++ {
		for dy := -r32; dy <= r32; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if int64(dx)*int64(dx)+int64(dy)*int64(dy) > int64(r)*int64(r) {
				continue
			}
			out = append(out, coord{dx, dy})
		}
	}
	return out
}

// RadiallyExpand unions into selected every available chunk within radius
// of an already-selected chunk (Euclidean distance, squared comparison).
// radius <= 0 is a no-op. Neighbour computation for disjoint batches of
// selected coordinates runs concurrently, each batch pre-deduplicating its
// own candidate set before the results are unioned.
func (s *Selection) RadiallyExpand(ctx context.Context, threads, radius int) error {
	if radius <= 0 {
		return nil
	}
	if threads < 1 {
		threads = 1
	}

	offsets := kernel(radius)
	unselected := make(map[coord]struct{}, len(s.available)-len(s.selected))
	for c := range s.available {
		if _, ok := s.selected[c]; !ok {
			unselected[c] = struct{}{}
		}
	}

	selectedCoords := make([]coord, 0, len(s.selected))
	for c := range s.selected {
		selectedCoords = append(selectedCoords, c)
	}

	var batches [][]coord
	for start := 0; start < len(selectedCoords); start += radialBatchSize {
		end := min(start+radialBatchSize, len(selectedCoords))
		batches = append(batches, selectedCoords[start:end])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	results := make([]map[coord]struct{}, len(batches))

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			found := make(map[coord]struct{})
			for _, c := range batch {
				for _, off := range offsets {
					cand := coord{c.X + off.X, c.Y + off.Y}
					if _, ok := unselected[cand]; ok {
						found[cand] = struct{}{}
					}
				}
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("executor: radial expand: %w", err)
	}

	for _, found := range results {
		for c := range found {
			s.selected[c] = struct{}{}
		}
	}
	return nil
}
