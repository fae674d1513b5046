package bcsv

import (
	"github.com/meigma/jsystem/internal/endian"
)

const (
	headerSize     = 16
	fieldEntrySize = 12
)

// header is the fixed 16-byte file header.
type header struct {
	rowCount   int32
	fieldCount int32
	rowsOffset int32
	rowStride  int32
}

func readHeader(v endian.View) (header, error) {
	var h header
	var err error
	if h.rowCount, err = v.Int32At(0); err != nil {
		return h, err
	}
	if h.fieldCount, err = v.Int32At(4); err != nil {
		return h, err
	}
	if h.rowsOffset, err = v.Int32At(8); err != nil {
		return h, err
	}
	if h.rowStride, err = v.Int32At(12); err != nil {
		return h, err
	}

	switch {
	case h.rowCount < 0:
		return h, v.Errorf(0, "negative row count %d", h.rowCount)
	case h.fieldCount < 0:
		return h, v.Errorf(4, "negative field count %d", h.fieldCount)
	case h.rowsOffset < headerSize:
		return h, v.Errorf(8, "rows offset 0x%X inside header", h.rowsOffset)
	case h.rowStride < 0:
		return h, v.Errorf(12, "negative row stride %d", h.rowStride)
	}
	return h, nil
}

func readField(v endian.View, off int, c *config) (Field, error) {
	b, err := v.Slice(off, fieldEntrySize)
	if err != nil {
		return Field{}, err
	}
	f := Field{
		Hash:   endian.Uint32(b[0:]),
		Mask:   endian.Uint32(b[4:]),
		Offset: endian.Uint16(b[8:]),
		Shift:  b[10],
		Type:   FieldType(b[11]),
	}
	if !f.Type.Valid() {
		return Field{}, v.Errorf(off+11, "unknown field type 0x%02X", uint8(f.Type))
	}
	f.Name = c.names.Resolve(f.Hash)
	return f, nil
}

// Decode parses a BCSV file.
//
// Every read is bounds checked; a structurally invalid buffer fails with a
// *FormatError and no table is returned.
func Decode(data []byte, opts ...Option) (*Table, error) {
	c := newConfig(opts)
	v := endian.NewView(formatName, data)

	h, err := readHeader(v)
	if err != nil {
		return nil, err
	}

	rowsEnd := int64(h.rowsOffset) + int64(h.rowCount)*int64(h.rowStride)
	if rowsEnd > int64(len(data)) {
		return nil, v.Errorf(int(h.rowsOffset), "%d rows of %d bytes exceed buffer of %d bytes",
			h.rowCount, h.rowStride, len(data))
	}
	if h.rowStride == 0 && int(h.rowCount) > len(data) {
		return nil, v.Errorf(0, "row count %d with zero stride", h.rowCount)
	}
	if int64(headerSize)+int64(h.fieldCount)*fieldEntrySize > int64(len(data)) {
		return nil, v.Errorf(4, "%d fields exceed buffer of %d bytes", h.fieldCount, len(data))
	}

	fields := make([]Field, h.fieldCount)
	for i := range fields {
		if fields[i], err = readField(v, headerSize+i*fieldEntrySize, c); err != nil {
			return nil, err
		}
	}

	t := &Table{Fields: fields, Records: make([]*Record, h.rowCount)}
	text := c.text()
	poolOffset := int(rowsEnd)
	for i := range t.Records {
		r := NewRecord(fields)
		rowBase := int(h.rowsOffset) + i*int(h.rowStride)
		for j, f := range fields {
			val, err := readValue(v, rowBase+int(f.Offset), poolOffset, f, text)
			if err != nil {
				return nil, err
			}
			r.values[j] = val
		}
		t.Records[i] = r
	}

	c.log().Debug("decoded bcsv",
		"rows", h.rowCount,
		"fields", h.fieldCount,
		"stride", h.rowStride)
	return t, nil
}

type stringDecoder interface {
	Decode(b []byte) (string, error)
}

func readValue(v endian.View, off, poolOffset int, f Field, text stringDecoder) (any, error) {
	switch f.Type {
	case Float:
		return v.Float32At(off)
	case Half:
		raw, err := v.Uint16At(off)
		if err != nil {
			return nil, err
		}
		return uint16((uint32(raw) & f.Mask) >> f.Shift), nil //nolint:gosec // masked to field width
	case Byte:
		raw, err := v.Uint8At(off)
		if err != nil {
			return nil, err
		}
		return uint8((uint32(raw) & f.Mask) >> f.Shift), nil //nolint:gosec // masked to field width
	case String:
		raw, err := v.Uint32At(off)
		if err != nil {
			return nil, err
		}
		strOff := int64(poolOffset) + int64((raw&f.Mask)>>f.Shift)
		if strOff >= int64(v.Len()) {
			return nil, v.Errorf(off, "string offset 0x%X outside pool", strOff-int64(poolOffset))
		}
		b, err := v.CString(int(strOff))
		if err != nil {
			return nil, err
		}
		s, err := text.Decode(b)
		if err != nil {
			return nil, v.Errorf(int(strOff), "undecodable string: %v", err)
		}
		return s, nil
	default:
		raw, err := v.Uint32At(off)
		if err != nil {
			return nil, err
		}
		return (raw & f.Mask) >> f.Shift, nil
	}
}
