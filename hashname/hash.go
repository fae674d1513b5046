// Package hashname implements the name hashes used by jsystem containers and
// a reverse lookup table from field hashes back to readable names.
//
// BCSV field names are stored only as 32-bit hashes. Resolving them requires
// a word list of candidate names; names missing from the list resolve to a
// bracketed hex placeholder that hashes back to the original value, so
// schemas round-trip without the list.
package hashname

import (
	"fmt"
	"strconv"
	"unicode/utf16"
)

// Hash32 returns the 32-bit field-name hash: h = h*31 + c over the UTF-16
// code units of name, with unsigned wraparound. ASCII names hash their bytes.
func Hash32(name string) uint32 {
	var h uint32
	for _, c := range codeUnits(name) {
		h = h*31 + uint32(c)
	}
	return h
}

// Hash16 returns the 16-bit archive entry hash: h = h*3 + c over the UTF-16
// code units of name, with unsigned wraparound.
func Hash16(name string) uint16 {
	var h uint16
	for _, c := range codeUnits(name) {
		h = h*3 + c
	}
	return h
}

// codeUnits returns the characters hashed for name. Runes outside the
// BMP contribute their surrogate pair.
func codeUnits(name string) []uint16 {
	return utf16.Encode([]rune(name))
}

// Placeholder renders hash as the "[XXXXXXXX]" name used for unregistered
// hashes.
func Placeholder(hash uint32) string {
	return fmt.Sprintf("[%08X]", hash)
}

// ParsePlaceholder reports whether name is a placeholder produced by
// Placeholder and returns the hash it encodes.
func ParsePlaceholder(name string) (uint32, bool) {
	if len(name) != 10 || name[0] != '[' || name[9] != ']' {
		return 0, false
	}
	v, err := strconv.ParseUint(name[1:9], 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// HashOf returns the hash stored for a field called name. Placeholder names
// hash to the value they encode; any other name is hashed with Hash32.
func HashOf(name string) uint32 {
	if h, ok := ParsePlaceholder(name); ok {
		return h
	}
	return Hash32(name)
}
