package entities

import "github.com/mcworld/mctrimmer/internal/region"

// File is the entities-file counterpart to region.File. Its on-disk layout
// and load/save rules are identical (see internal/region), so it wraps a
// region.File rather than re-implementing the table and sector-allocation
// logic: the only thing that differs between a chunk region file and an
// entities file is how callers query the payload.
type File struct {
	inner *region.File
}

// NewEmpty returns a File with no entities, used when the sibling entities
// file for a region is absent on disk.
func NewEmpty() *File {
	return &File{inner: nil}
}

// LoadFile reads and parses an entities file from path. Like
// region.LoadFile, a file too short to hold the location/timestamp tables
// yields (nil, nil).
func LoadFile(path string) (*File, error) {
	inner, err := region.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	return &File{inner: inner}, nil
}

// Dirty reports whether any entity entry has been removed since load.
func (f *File) Dirty() bool {
	return f != nil && f.inner != nil && f.inner.Dirty()
}

// Entity returns the entity payload at index, or nil if that slot is
// empty or the file itself is absent.
func (f *File) Entity(index int) *region.Chunk {
	if f == nil || f.inner == nil {
		return nil
	}
	return f.inner.Chunk(index)
}

// Indices returns the slot indices currently holding an entity payload.
func (f *File) Indices() []int {
	if f == nil || f.inner == nil {
		return nil
	}
	return f.inner.Indices()
}

// ResetChunk removes the entity payload at index, if present.
func (f *File) ResetChunk(index int) {
	if f == nil || f.inner == nil {
		return
	}
	f.inner.ResetChunk(index)
}

// AdoptChunk inserts an entity payload (already decoded, from another
// file) at index, creating the backing region.File lazily if this File had
// no entities on load.
func (f *File) AdoptChunk(index int, c *region.Chunk) {
	if c.Empty() {
		return
	}
	if f.inner == nil {
		f.inner = region.NewEmptyFile()
	}
	f.inner.AdoptChunk(index, c)
}

// SaveToFile writes the current contents to path. Saving an absent
// (never-loaded) file is a no-op, matching the "missing entities file"
// tolerance on load.
func (f *File) SaveToFile(path string) error {
	if f == nil || f.inner == nil {
		return nil
	}
	return f.inner.SaveToFile(path)
}
