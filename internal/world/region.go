// Package world pairs a region's chunk file with its sibling entities
// file, and manages the on-disk layout (input/output/backup trees) that
// region files are read from and written to.
package world

import (
	"github.com/mcworld/mctrimmer/internal/entities"
	"github.com/mcworld/mctrimmer/internal/region"
)

// Region is one region's chunk file joined with its entities file, the
// unit of work handed to a single worker.
type Region struct {
	FileName string
	Chunks   *region.File
	Entities *entities.File
}

// JoinedEntry is one row of Region.Iterate: a slot index plus whichever of
// the chunk/entity payload is present (either may be an empty sentinel).
type JoinedEntry struct {
	Index  int
	Chunk  *region.Chunk
	Entity *region.Chunk
}

// Iterate walks the union of slot indices present in the chunk file and
// the entities file. A slot missing on one side yields an empty sentinel
// for that side rather than being skipped.
func (r *Region) Iterate() []JoinedEntry {
	seen := make(map[int]struct{})
	for _, i := range r.Chunks.Indices() {
		seen[i] = struct{}{}
	}
	for _, i := range r.Entities.Indices() {
		seen[i] = struct{}{}
	}
	out := make([]JoinedEntry, 0, len(seen))
	for i := range seen {
		out = append(out, JoinedEntry{
			Index:  i,
			Chunk:  r.Chunks.Chunk(i),
			Entity: r.Entities.Entity(i),
		})
	}
	return out
}

// ResetChunk removes the chunk and its paired entity payload at index, so
// that both vanish together.
func (r *Region) ResetChunk(index int) {
	r.Chunks.ResetChunk(index)
	r.Entities.ResetChunk(index)
}

// Trim evicts every chunk for which condition holds, given its paired
// (possibly empty) entity payload.
func (r *Region) Trim(condition func(chunk, entity *region.Chunk) bool) {
	for _, entry := range r.Iterate() {
		if condition(entry.Chunk, entry.Entity) {
			r.ResetChunk(entry.Index)
		}
	}
}
