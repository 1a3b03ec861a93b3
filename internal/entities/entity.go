// Package entities implements the entity-file half of the region codec:
// same on-disk layout as a chunk region file (see internal/region), but
// queried by whether an entity's NBT carries a given "id" string rather
// than by chunk metadata fields.
package entities

import (
	"bytes"
	"encoding/binary"

	"github.com/mcworld/mctrimmer/internal/region"
)

// ContainsID reports whether entity's decompressed NBT contains the exact
// byte sequence for a TAG_String named "id" with the given value:
// 0x08 0x00 0x02 'i' 'd' [len_be16] [id bytes]. A nil or empty entity never
// matches.
func ContainsID(entity *region.Chunk, id string) bool {
	if entity.Empty() {
		return false
	}
	blob := entity.DecompressedBytes()
	idBytes := []byte(id)
	needle := make([]byte, 0, 5+2+len(idBytes))
	needle = append(needle, 0x08, 0x00, 0x02, 'i', 'd')
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(idBytes)))
	needle = append(needle, lenBuf[:]...)
	needle = append(needle, idBytes...)
	return bytes.Contains(blob, needle)
}
