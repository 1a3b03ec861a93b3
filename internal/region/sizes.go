// Package region implements the Anvil-style region file codec: the location
// and timestamp tables, the per-chunk compression header, and the fast NBT
// field scanner chunks are read through. See
// https://minecraft.wiki/w/Region_file_format for the on-disk layout this
// mirrors.
package region

// Sizes of the fixed regions of an Anvil-style .mca file.
const (
	// Sector is the on-disk alignment unit. Every chunk payload is padded up
	// to a whole number of sectors.
	Sector = 4096

	// LocationTableSize is the size in bytes of the location table at the
	// start of a region file.
	LocationTableSize = Sector

	// TimestampTableSize is the size in bytes of the timestamp table that
	// follows the location table.
	TimestampTableSize = Sector

	// HeaderSectors is the number of sectors occupied by the location and
	// timestamp tables combined. No chunk payload may reference a sector
	// before this.
	HeaderSectors = (LocationTableSize + TimestampTableSize) / Sector

	// ChunkHeaderSize is the size in bytes of the per-chunk payload header:
	// a 4-byte big-endian length followed by a 1-byte compression scheme.
	ChunkHeaderSize = 5

	// ChunkCount is the number of chunk slots in a region (32 x 32).
	ChunkCount = 1024

	// locationEntrySize is the on-disk size of one location table entry: a
	// 3-byte big-endian sector offset followed by a 1-byte sector count.
	// 1024 entries of 4 bytes fill exactly one LocationTableSize sector.
	locationEntrySize = 4
	// timestampEntrySize is the on-disk size of one timestamp table entry.
	timestampEntrySize = 4
)

// ChunkIndex returns the region-local slot index for chunk coordinates
// local to the region (0..31 each).
func ChunkIndex(localX, localZ int) int {
	return (localX & 31) + 32*(localZ&31)
}
