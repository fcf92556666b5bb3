package link

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

func decodeUTF16(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(units))
}

func TestJunctionReparseDataLayout(t *testing.T) {
	target := `C:\Users\dev\.nsw\versions\v12.22.1\win-x64\node-v12.22.1-win-x64`
	buf := junctionReparseData(target)
	le := binary.LittleEndian

	if tag := le.Uint32(buf[0:]); tag != reparseTagMountPoint {
		t.Fatalf("unexpected reparse tag %#x", tag)
	}
	if got, want := int(le.Uint16(buf[4:])), len(buf)-8; got != want {
		t.Fatalf("data length %d, want %d", got, want)
	}
	if reserved := le.Uint16(buf[6:]); reserved != 0 {
		t.Fatalf("reserved field set to %d", reserved)
	}

	path := buf[16:]
	subOff, subLen := int(le.Uint16(buf[8:])), int(le.Uint16(buf[10:]))
	printOff, printLen := int(le.Uint16(buf[12:])), int(le.Uint16(buf[14:]))
	if got := decodeUTF16(path[subOff : subOff+subLen]); got != `\??\`+target {
		t.Fatalf("substitute name %q", got)
	}
	if got := decodeUTF16(path[printOff : printOff+printLen]); got != target {
		t.Fatalf("print name %q", got)
	}
	if printOff != subLen+2 {
		t.Fatalf("print name must follow the NUL-terminated substitute name, got offset %d", printOff)
	}
	if len(path) != printOff+printLen+2 {
		t.Fatalf("path buffer %d bytes, want %d", len(path), printOff+printLen+2)
	}
	if le.Uint16(path[subLen:]) != 0 || le.Uint16(path[printOff+printLen:]) != 0 {
		t.Fatalf("names must be NUL-terminated")
	}
}
