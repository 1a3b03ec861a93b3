package region

import (
	"encoding/binary"
	"fmt"
)

// Chunk wraps one compressed chunk payload from a region file. The
// original compressed bytes are retained verbatim so that re-emitting a
// chunk that was not evicted is byte-identical to the source file.
type Chunk struct {
	compressed   []byte // header + body, exactly as read from disk
	decompressed []byte // NBT payload, root compound opener already stripped
}

// DecodePayload parses one chunk-shaped sector slice: a 4-byte big-endian
// length, a 1-byte compression scheme, and a compressed body. It is shared
// by Chunk and the sibling entities package's Entity, which use the
// identical wire format.
//
// It returns (nil, nil, nil) for an empty slot (header length == 0). A
// non-nil error means the payload is malformed in a way this codec cannot
// recover from: an unknown compression byte, a declared length that
// doesn't fit the slice, or a decompressed body too short to hold the
// 3-byte root compound opener.
func DecodePayload(sectorSlice []byte) (compressed, decompressed []byte, err error) {
	if len(sectorSlice) < ChunkHeaderSize {
		return nil, nil, fmt.Errorf("region: slice too short for header (%d bytes)", len(sectorSlice))
	}
	length := binary.BigEndian.Uint32(sectorSlice[0:4])
	if length == 0 {
		return nil, nil, nil
	}
	scheme := Compression(sectorSlice[4])
	if !scheme.Known() {
		return nil, nil, fmt.Errorf("region: unknown compression scheme %d", scheme)
	}
	bodyLen := int(length) - 1
	if bodyLen < 0 {
		return nil, nil, fmt.Errorf("region: invalid length %d", length)
	}
	end := ChunkHeaderSize + bodyLen
	if end > len(sectorSlice) {
		return nil, nil, fmt.Errorf("region: declared length %d exceeds available %d bytes", bodyLen, len(sectorSlice)-ChunkHeaderSize)
	}
	body := sectorSlice[ChunkHeaderSize:end]

	raw, err := Decompress(body, scheme)
	if err != nil {
		return nil, nil, fmt.Errorf("region: decompress: %w", err)
	}
	if len(raw) < 3 {
		return nil, nil, fmt.Errorf("region: decompressed payload too short to strip root tag opener")
	}
	// Strip the 3-byte root compound opener: tag byte (0x0A) + zero-length name.
	raw = raw[3:]

	compressed = make([]byte, ChunkHeaderSize+len(body))
	copy(compressed, sectorSlice[:ChunkHeaderSize+len(body)])
	return compressed, raw, nil
}

// chunkFromBytes parses one chunk's sector slice. See DecodePayload for the
// empty/error semantics.
func chunkFromBytes(sectorSlice []byte) (*Chunk, error) {
	compressed, decompressed, err := DecodePayload(sectorSlice)
	if err != nil {
		return nil, err
	}
	if compressed == nil {
		return nil, nil
	}
	return &Chunk{compressed: compressed, decompressed: decompressed}, nil
}

// Empty reports whether this chunk has been evicted (or never existed).
func (c *Chunk) Empty() bool {
	return c == nil || len(c.compressed) == 0
}

// DecompressedBytes returns the NBT payload with the root compound opener
// already stripped, as read from disk. Empty chunks return nil.
func (c *Chunk) DecompressedBytes() []byte {
	if c.Empty() {
		return nil
	}
	return c.decompressed
}

// InhabitedTime returns the chunk's cumulative ticks-with-nearby-player
// value. It is an error for this to be negative; malformed data is
// reported rather than silently truncated.
func (c *Chunk) InhabitedTime() (int64, error) {
	if c.Empty() {
		return 0, fmt.Errorf("chunk: empty chunk has no InhabitedTime")
	}
	v, err := FastGetProperty(c.decompressed, "InhabitedTime", Int64BE)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("chunk: negative InhabitedTime %d", v)
	}
	return v, nil
}

// XPos returns the chunk's xPos field.
func (c *Chunk) XPos() (int32, error) { return c.int32Field("xPos") }

// YPos returns the chunk's yPos field.
func (c *Chunk) YPos() (int32, error) { return c.int32Field("yPos") }

// ZPos returns the chunk's zPos field.
func (c *Chunk) ZPos() (int32, error) { return c.int32Field("zPos") }

func (c *Chunk) int32Field(name string) (int32, error) {
	if c.Empty() {
		return 0, fmt.Errorf("chunk: empty chunk has no %s", name)
	}
	v, err := FastGetProperty(c.decompressed, name, Int32BE)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ConditionalReset evicts the chunk (blanking its compressed bytes) if it
// is currently non-empty and pred reports true. It returns whether the
// chunk was evicted.
func (c *Chunk) ConditionalReset(pred func(*Chunk) bool) bool {
	if c.Empty() {
		return false
	}
	if pred(c) {
		c.compressed = nil
		return true
	}
	return false
}

// Bytes returns the verbatim compressed payload (header + body) as it
// should be written back to disk. Empty chunks return nil.
func (c *Chunk) Bytes() []byte {
	if c.Empty() {
		return nil
	}
	return c.compressed
}

// SizeOnDisk returns the number of bytes this chunk occupies, header
// included.
func (c *Chunk) SizeOnDisk() int {
	if c.Empty() {
		return 0
	}
	return len(c.compressed)
}
