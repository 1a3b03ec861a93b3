package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FieldStrategy describes the expected NBT tag byte and value width for a
// fast-scanned field.
type FieldStrategy struct {
	Tag   byte
	Width int
}

// Int32BE reads a TAG_Int (tag 0x03) as a big-endian 4-byte value.
var Int32BE = FieldStrategy{Tag: 0x03, Width: 4}

// Int64BE reads a TAG_Long (tag 0x04) as a big-endian 8-byte value.
var Int64BE = FieldStrategy{Tag: 0x04, Width: 8}

// FastGetProperty scans blob for the byte sequence
// [tag][name_len_be16][name] (a named tag's NBT header; for the short field
// names involved the length's high byte is 0x00) and returns the big-endian
// integer that immediately follows it, without building an NBT tag tree.
//
// This is a best-effort shortcut for the small, known set of Minecraft
// chunk fields (InhabitedTime, xPos, yPos, zPos). It is undefined behavior
// to look up a field name that could legitimately appear as a substring of
// some other tag's payload: the scanner has no notion of tag nesting and
// simply returns the first match.
func FastGetProperty(blob []byte, name string, strategy FieldStrategy) (int64, error) {
	nameBytes := []byte(name)
	nameLen := len(nameBytes)

	for i := 0; i+3+nameLen+strategy.Width <= len(blob); i++ {
		if blob[i] != strategy.Tag {
			continue
		}
		l := int(blob[i+1])<<8 | int(blob[i+2])
		if l != nameLen {
			continue
		}
		start := i + 3
		if !bytes.Equal(blob[start:start+nameLen], nameBytes) {
			continue
		}
		valStart := start + nameLen
		switch strategy.Width {
		case 4:
			return int64(int32(binary.BigEndian.Uint32(blob[valStart : valStart+4]))), nil
		case 8:
			return int64(binary.BigEndian.Uint64(blob[valStart : valStart+8])), nil
		default:
			return 0, fmt.Errorf("fastfield: unsupported width %d", strategy.Width)
		}
	}
	return 0, fmt.Errorf("fastfield: field %q not found", name)
}
