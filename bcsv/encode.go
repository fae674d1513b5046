package bcsv

import (
	"fmt"
	"math"

	"github.com/meigma/jsystem/internal/endian"
	"github.com/meigma/jsystem/internal/jtype"
)

const (
	alignment = 32
	padByte   = 0x40
)

// stringPool assigns pool offsets to distinct strings in first-seen order.
type stringPool struct {
	offsets map[string]uint32
	data    []byte
}

func (p *stringPool) add(s string, c *config) error {
	if _, ok := p.offsets[s]; ok {
		return nil
	}
	if len(p.data) > math.MaxUint32 {
		return fmt.Errorf("bcsv: string pool: %w", ErrTooLarge)
	}
	off := uint32(len(p.data)) //nolint:gosec // bounded above
	data, err := c.text().AppendCString(p.data, s)
	if err != nil {
		return fmt.Errorf("bcsv: encode string: %w", err)
	}
	p.offsets[s] = off
	p.data = data
	return nil
}

// Encode serializes t.
//
// The field table is written exactly as declared. Values are OR-ed into
// zeroed row storage after masking and shifting, so packed fields that share
// a word never clobber each other; Float values are stored directly. A
// record that lacks a field, or holds a value of the wrong Go type, encodes
// the field's default value.
func Encode(t *Table, opts ...Option) ([]byte, error) {
	c := newConfig(opts)

	for _, f := range t.Fields {
		if !f.Type.Valid() {
			return nil, jtype.NewFormatError(formatName, -1, "field %q: unknown type 0x%02X", f.Name, uint8(f.Type))
		}
	}
	if len(t.Records) > math.MaxInt32 || len(t.Fields) > (math.MaxInt32-headerSize)/fieldEntrySize {
		return nil, fmt.Errorf("bcsv: %d rows of %d fields: %w", len(t.Records), len(t.Fields), ErrTooLarge)
	}

	pool := stringPool{offsets: make(map[string]uint32)}
	for _, r := range t.Records {
		for j, f := range t.Fields {
			if f.Type != String {
				continue
			}
			if err := pool.add(r.valueFor(f, j).(string), c); err != nil { //nolint:forcetypeassert // valueFor returns the field's type
				return nil, err
			}
		}
	}

	stride := t.Stride()
	rowsOffset := headerSize + len(t.Fields)*fieldEntrySize
	poolOffset := int64(rowsOffset) + int64(len(t.Records))*int64(stride)
	size := poolOffset + int64(len(pool.data))
	if size > math.MaxInt32 {
		return nil, fmt.Errorf("bcsv: encoded size %d: %w", size, ErrTooLarge)
	}
	total := endian.Align(int(size), alignment)

	buf := make([]byte, total)
	endian.PutInt32(buf[0:], int32(len(t.Records))) //nolint:gosec // bounded above
	endian.PutInt32(buf[4:], int32(len(t.Fields)))  //nolint:gosec // bounded above
	endian.PutInt32(buf[8:], int32(rowsOffset))     //nolint:gosec // bounded above
	endian.PutInt32(buf[12:], int32(stride))        //nolint:gosec // at most 0xFFFF+4

	for i, f := range t.Fields {
		b := buf[headerSize+i*fieldEntrySize:]
		endian.PutUint32(b[0:], f.Hash)
		endian.PutUint32(b[4:], f.Mask)
		endian.PutUint16(b[8:], f.Offset)
		b[10] = f.Shift
		b[11] = byte(f.Type)
	}

	for i, r := range t.Records {
		row := buf[rowsOffset+i*stride : rowsOffset+(i+1)*stride]
		for j, f := range t.Fields {
			writeValue(row[f.Offset:], f, r.valueFor(f, j), &pool)
		}
	}

	copy(buf[poolOffset:], pool.data)
	for i := int(size); i < total; i++ {
		buf[i] = padByte
	}

	c.log().Debug("encoded bcsv",
		"rows", len(t.Records),
		"fields", len(t.Fields),
		"stride", stride,
		"strings", len(pool.offsets),
		"size", total)
	return buf, nil
}

//nolint:forcetypeassert // callers pass values produced by valueFor
func writeValue(b []byte, f Field, v any, pool *stringPool) {
	switch f.Type {
	case Float:
		endian.PutFloat32(b, v.(float32))
	case Half:
		cur := endian.Uint16(b)
		cur |= uint16((uint32(v.(uint16)) << f.Shift) & f.Mask) //nolint:gosec // truncation to the stored width
		endian.PutUint16(b, cur)
	case Byte:
		b[0] |= uint8((uint32(v.(uint8)) << f.Shift) & f.Mask) //nolint:gosec // truncation to the stored width
	case String:
		cur := endian.Uint32(b)
		cur |= (pool.offsets[v.(string)] << f.Shift) & f.Mask
		endian.PutUint32(b, cur)
	default:
		cur := endian.Uint32(b)
		cur |= (v.(uint32) << f.Shift) & f.Mask
		endian.PutUint32(b, cur)
	}
}
