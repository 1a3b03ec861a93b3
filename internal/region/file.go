package region

import (
	"fmt"
	"math"
	"os"
	"sort"
)

// File is one Anvil-style .mca region file: up to 1024 chunk payloads
// indexed by their position within the 32x32 region, plus the timestamp
// table carried through unchanged. It is the shared codec behind both
// chunk ("region/r.X.Z.mca") and entity ("entities/r.X.Z.mca") files — see
// the File wrapper in the sibling entities package for the latter.
type File struct {
	chunks     map[int]*Chunk // present (non-empty) chunks, keyed by slot index
	timestamps [ChunkCount]Timestamp
	dirty      bool
}

// NewEmptyFile returns a File with no chunks and a zeroed timestamp table,
// used when an expected region or entities file is absent or too short to
// parse.
func NewEmptyFile() *File {
	return &File{chunks: make(map[int]*Chunk)}
}

// LoadFile reads and parses a region file from path. If the file is
// shorter than the combined location and timestamp tables, it is treated
// as "no region": LoadFile returns a nil *File and a nil error, per the
// tolerant load policy for header-less or truncated files.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("region: read %s: %w", path, err)
	}
	return FromBytes(data)
}

// FromBytes parses a region file already read into memory.
func FromBytes(data []byte) (*File, error) {
	if len(data) < LocationTableSize+TimestampTableSize {
		return nil, nil
	}
	locations, err := parseLocationTable(data[:LocationTableSize])
	if err != nil {
		return nil, err
	}
	timestamps, err := parseTimestampTable(data[LocationTableSize : LocationTableSize+TimestampTableSize])
	if err != nil {
		return nil, err
	}

	f := &File{chunks: make(map[int]*Chunk), timestamps: timestamps}
	for i, loc := range locations {
		if loc.Empty() {
			continue
		}
		start := int(loc.Offset) * Sector
		end := start + int(loc.Size)*Sector
		if start >= len(data) {
			continue // tolerate a truncated tail
		}
		if end > len(data) {
			end = len(data)
		}
		chunk, err := chunkFromBytes(data[start:end])
		if err != nil {
			// Format/decompression errors are non-fatal: skip this chunk.
			continue
		}
		if chunk.Empty() {
			continue
		}
		f.chunks[i] = chunk
	}
	return f, nil
}

// Dirty reports whether at least one ResetChunk call has actually removed
// an entry since load.
func (f *File) Dirty() bool { return f.dirty }

// Chunk returns the chunk at index, or nil if that slot is empty.
func (f *File) Chunk(index int) *Chunk { return f.chunks[index] }

// Indices returns the slot indices currently holding a chunk, in no
// particular order.
func (f *File) Indices() []int {
	out := make([]int, 0, len(f.chunks))
	for i := range f.chunks {
		out = append(out, i)
	}
	return out
}

// ResetChunk removes the chunk at index, if present, marking the file
// dirty.
func (f *File) ResetChunk(index int) {
	if _, ok := f.chunks[index]; ok {
		delete(f.chunks, index)
		f.dirty = true
	}
}

// AdoptChunk inserts c (already-decoded, from another file) at index,
// marking this file dirty. A nil or empty c is a no-op, matching the "only
// non-empty chunks occupy a slot" invariant.
func (f *File) AdoptChunk(index int, c *Chunk) {
	if c.Empty() {
		return
	}
	f.chunks[index] = c
	f.dirty = true
}

// ToBytes rebuilds the on-disk representation from scratch: a fresh
// location table, the (mostly preserved) timestamp table, and chunk
// payloads packed contiguously from sector 2 onward in ascending index
// order.
func (f *File) ToBytes() ([]byte, error) {
	indices := make([]int, 0, len(f.chunks))
	for i := range f.chunks {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var locations [ChunkCount]Location
	var payload []byte
	cursor := uint32(HeaderSectors)

	for _, i := range indices {
		chunk := f.chunks[i]
		raw := chunk.Bytes()
		sectorsNeeded := (len(raw) + Sector - 1) / Sector
		if sectorsNeeded > math.MaxUint8 {
			return nil, fmt.Errorf("region: chunk %d needs %d sectors, exceeds 255", i, sectorsNeeded)
		}
		locations[i] = Location{Offset: cursor, Size: uint8(sectorsNeeded)}

		padded := make([]byte, sectorsNeeded*Sector)
		copy(padded, raw)
		payload = append(payload, padded...)

		cursor += uint32(sectorsNeeded)
	}

	out := make([]byte, 0, LocationTableSize+TimestampTableSize+len(payload))
	out = append(out, writeLocationTable(locations)...)
	out = append(out, writeTimestampTable(f.timestamps)...)
	out = append(out, payload...)
	return out, nil
}

// SaveToFile writes the current contents to path.
func (f *File) SaveToFile(path string) error {
	data, err := f.ToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
