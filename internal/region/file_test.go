package region

import (
	"bytes"
	"testing"
)

// buildRegionFile assembles a full region file with chunks placed at
// sector indices, in registration order: chunks[i] goes at slot index
// indices[i], occupying consecutive sectors starting at HeaderSectors.
func buildRegionFile(t *testing.T, indices []int, chunks [][]byte) []byte {
	t.Helper()
	var locations [ChunkCount]Location
	var timestamps [ChunkCount]Timestamp
	var payload []byte
	cursor := uint32(HeaderSectors)

	for i, idx := range indices {
		raw := chunks[i]
		sectors := (len(raw) + Sector - 1) / Sector
		locations[idx] = Location{Offset: cursor, Size: uint8(sectors)}
		padded := make([]byte, sectors*Sector)
		copy(padded, raw)
		payload = append(payload, padded...)
		cursor += uint32(sectors)
	}

	out := append([]byte{}, writeLocationTable(locations)...)
	out = append(out, writeTimestampTable(timestamps)...)
	out = append(out, payload...)
	return out
}

// TestEmptyRegionRoundTrip covers S1: an all-zero 8192-byte file loads to
// zero chunks, and saving reproduces the same 8192 bytes.
func TestEmptyRegionRoundTrip(t *testing.T) {
	data := make([]byte, LocationTableSize+TimestampTableSize)
	f, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if f == nil {
		t.Fatalf("expected a File, got nil")
	}
	if len(f.Indices()) != 0 {
		t.Fatalf("expected zero chunks, got %d", len(f.Indices()))
	}

	out, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("round-tripped bytes differ from the original %d-byte file", len(data))
	}
}

// TestSingleChunkRoundTrip covers S2: one ZLIB chunk at index 5 survives a
// load/save/reload cycle byte-identical.
func TestSingleChunkRoundTrip(t *testing.T) {
	var body []byte
	body = append(body, intField("xPos", 10)...)
	body = append(body, intField("zPos", -3)...)
	body = append(body, longField("InhabitedTime", 2400)...)
	chunkSector := buildChunkSector(t, CompressionZLib, body)

	data := buildRegionFile(t, []int{5}, [][]byte{chunkSector})

	f, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	c := f.Chunk(5)
	if c.Empty() {
		t.Fatalf("expected chunk at index 5")
	}
	if v, err := c.InhabitedTime(); err != nil || v != 2400 {
		t.Fatalf("InhabitedTime: got (%d, %v)", v, err)
	}

	out, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	reloaded, err := FromBytes(out)
	if err != nil {
		t.Fatalf("reload FromBytes: %v", err)
	}
	c2 := reloaded.Chunk(5)
	if c2.Empty() {
		t.Fatalf("expected chunk at index 5 after reload")
	}
	if !bytes.Equal(c.Bytes(), c2.Bytes()) {
		t.Fatalf("chunk bytes at index 5 changed across a no-op round trip")
	}
}

// TestTrimBelowOneMinute covers S3: of two chunks with InhabitedTime 600
// and 1800, only the 1800 chunk survives a threshold-1200 trim, and the
// resulting file is exactly 3 sectors.
func TestTrimBelowOneMinute(t *testing.T) {
	const threshold = 1200

	shortLived := buildChunkSector(t, CompressionZLib, longField("InhabitedTime", 600))
	longLived := buildChunkSector(t, CompressionZLib, longField("InhabitedTime", 1800))

	data := buildRegionFile(t, []int{0, 1}, [][]byte{shortLived, longLived})
	f, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	for _, idx := range f.Indices() {
		c := f.Chunk(idx)
		inhabited, err := c.InhabitedTime()
		if err != nil {
			t.Fatalf("InhabitedTime: %v", err)
		}
		if inhabited < threshold {
			f.ResetChunk(idx)
		}
	}

	if !f.Dirty() {
		t.Fatalf("expected file to be dirty after trimming")
	}
	if len(f.Indices()) != 1 || f.Chunk(1).Empty() {
		t.Fatalf("expected only index 1 to survive")
	}

	out, err := f.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	if len(out) != 3*Sector {
		t.Fatalf("file length = %d, want %d (3 sectors)", len(out), 3*Sector)
	}
}
