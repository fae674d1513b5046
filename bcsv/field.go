package bcsv

import (
	"fmt"
	"strings"

	"github.com/meigma/jsystem/hashname"
)

// FieldType identifies how a field's value is stored in a row.
type FieldType uint8

// Field types. Code 0x01 is not used by the format.
const (
	Word       FieldType = 0x00
	Float      FieldType = 0x02
	PackedWord FieldType = 0x03
	Half       FieldType = 0x04
	Byte       FieldType = 0x05
	String     FieldType = 0x06
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case Word, Float, PackedWord, Half, Byte, String:
		return true
	default:
		return false
	}
}

// Width returns the number of row bytes the field's underlying word occupies.
func (t FieldType) Width() int {
	switch t {
	case Half:
		return 2
	case Byte:
		return 1
	default:
		return 4
	}
}

// DefaultMask returns the mask a field of type t carries when it is not
// packed.
func (t FieldType) DefaultMask() uint32 {
	switch t {
	case Half:
		return 0xFFFF
	case Byte:
		return 0xFF
	default:
		return 0xFFFFFFFF
	}
}

// Default returns the zero value of the Go type that holds values of type t.
func (t FieldType) Default() any {
	switch t {
	case Float:
		return float32(0)
	case Half:
		return uint16(0)
	case Byte:
		return uint8(0)
	case String:
		return ""
	default:
		return uint32(0)
	}
}

func (t FieldType) String() string {
	switch t {
	case Word:
		return "word"
	case Float:
		return "float"
	case PackedWord:
		return "packed"
	case Half:
		return "half"
	case Byte:
		return "byte"
	case String:
		return "string"
	default:
		return fmt.Sprintf("type(0x%02X)", uint8(t))
	}
}

// goType names the Go type used for values of type t.
func (t FieldType) goType() string {
	return fmt.Sprintf("%T", t.Default())
}

// accepts reports whether v has the Go type used for values of type t.
func (t FieldType) accepts(v any) bool {
	switch v.(type) {
	case uint32:
		return t == Word || t == PackedWord
	case float32:
		return t == Float
	case uint16:
		return t == Half
	case uint8:
		return t == Byte
	case string:
		return t == String
	default:
		return false
	}
}

// ParseFieldType returns the type named s, as produced by FieldType.String.
func ParseFieldType(s string) (FieldType, error) {
	for _, t := range []FieldType{Word, Float, PackedWord, Half, Byte, String} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("bcsv: unknown field type %q", s)
}

// Field describes one column of a table.
type Field struct {
	// Name is the resolved field name, or a "[XXXXXXXX]" placeholder.
	Name string
	// Hash is the stored name hash.
	Hash uint32
	Type FieldType
	// Offset is the byte offset of the underlying word within a row.
	Offset uint16
	Mask   uint32
	Shift  uint8
}

// NewField returns an unpacked field: default mask and zero shift.
func NewField(name string, typ FieldType, offset uint16) Field {
	return NewPackedField(name, typ, offset, typ.DefaultMask(), 0)
}

// NewPackedField returns a field whose value occupies the bits selected by
// mask, shifted left by shift, within its underlying word.
func NewPackedField(name string, typ FieldType, offset uint16, mask uint32, shift uint8) Field {
	return Field{
		Name:   name,
		Hash:   hashname.HashOf(name),
		Type:   typ,
		Offset: offset,
		Mask:   mask,
		Shift:  shift,
	}
}

// end returns the first row byte after the field's underlying word.
func (f Field) end() int {
	return int(f.Offset) + f.Type.Width()
}
