package link

import (
	"encoding/binary"
	"unicode/utf16"
)

const reparseTagMountPoint = 0xA0000003

// junctionReparseData encodes a mount point REPARSE_DATA_BUFFER for an
// absolute target: an 8-byte header, four name offsets and lengths, then the
// NT substitute name and the print name, each NUL-terminated.
func junctionReparseData(target string) []byte {
	substitute := utf16.Encode([]rune(`\??\` + target))
	display := utf16.Encode([]rune(target))
	substituteLen := len(substitute) * 2
	displayLen := len(display) * 2
	pathLen := substituteLen + 2 + displayLen + 2

	buf := make([]byte, 16+pathLen)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], reparseTagMountPoint)
	le.PutUint16(buf[4:], uint16(8+pathLen))
	le.PutUint16(buf[8:], 0)
	le.PutUint16(buf[10:], uint16(substituteLen))
	le.PutUint16(buf[12:], uint16(substituteLen+2))
	le.PutUint16(buf[14:], uint16(displayLen))
	offset := 16
	for _, unit := range substitute {
		le.PutUint16(buf[offset:], unit)
		offset += 2
	}
	offset += 2
	for _, unit := range display {
		le.PutUint16(buf[offset:], unit)
		offset += 2
	}
	return buf
}
