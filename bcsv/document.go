package bcsv

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/meigma/jsystem/hashname"
	"github.com/meigma/jsystem/internal/codec"
)

// Document is the text interchange form of a table: its schema and one map
// per row from field name to value.
type Document struct {
	Fields []DocumentField   `yaml:"fields" cbor:"fields"`
	Rows   []map[string]any `yaml:"rows" cbor:"rows"`
}

// DocumentField is the interchange form of a Field. A nil Hash is derived
// from Name on import.
type DocumentField struct {
	Name   string  `yaml:"name" cbor:"name"`
	Hash   *uint32 `yaml:"hash,omitempty" cbor:"hash,omitempty"`
	Type   string  `yaml:"type" cbor:"type"`
	Offset uint16  `yaml:"offset" cbor:"offset"`
	Mask   uint32  `yaml:"mask" cbor:"mask"`
	Shift  uint8   `yaml:"shift,omitempty" cbor:"shift,omitempty"`
}

// ToDocument converts t to its interchange form. Records that lack a field
// carry the default value for it.
func ToDocument(t *Table) *Document {
	d := &Document{
		Fields: make([]DocumentField, len(t.Fields)),
		Rows:   make([]map[string]any, len(t.Records)),
	}
	for i, f := range t.Fields {
		hash := f.Hash
		d.Fields[i] = DocumentField{
			Name:   f.Name,
			Hash:   &hash,
			Type:   f.Type.String(),
			Offset: f.Offset,
			Mask:   f.Mask,
			Shift:  f.Shift,
		}
	}
	for i, r := range t.Records {
		row := make(map[string]any, len(t.Fields))
		for j, f := range t.Fields {
			row[f.Name] = r.valueFor(f, j)
		}
		d.Rows[i] = row
	}
	return d
}

// Table converts d back to a table. Values are coerced to the Go type of
// their field; a value that cannot be represented fails with a
// *TypeMismatchError. Row keys that name no field fail with ErrUnknownField.
func (d *Document) Table() (*Table, error) {
	fields := make([]Field, len(d.Fields))
	for i, df := range d.Fields {
		typ, err := ParseFieldType(df.Type)
		if err != nil {
			return nil, err
		}
		hash := hashname.HashOf(df.Name)
		if df.Hash != nil {
			hash = *df.Hash
		}
		fields[i] = Field{
			Name:   df.Name,
			Hash:   hash,
			Type:   typ,
			Offset: df.Offset,
			Mask:   df.Mask,
			Shift:  df.Shift,
		}
	}

	t := NewTable(fields...)
	for _, row := range d.Rows {
		r := t.NewRecord()
		for name, raw := range row {
			i := r.find(name)
			if i < 0 {
				return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
			}
			v, err := coerce(r.fields[i], raw)
			if err != nil {
				return nil, err
			}
			r.values[i] = v
		}
	}
	return t, nil
}

// coerce converts a decoded interchange value to the Go type of f.
func coerce(f Field, raw any) (any, error) {
	if raw == nil {
		return f.Type.Default(), nil
	}
	mismatch := &TypeMismatchError{Field: f.Name, Expected: f.Type.goType(), Found: fmt.Sprintf("%T(%v)", raw, raw)}

	if f.Type == String {
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch
		}
		return s, nil
	}

	if f.Type == Float {
		switch n := raw.(type) {
		case float64:
			return float32(n), nil
		case float32:
			return n, nil
		}
		if i, ok := integer(raw); ok {
			return float32(i), nil
		}
		return nil, mismatch
	}

	i, ok := integer(raw)
	if !ok {
		return nil, mismatch
	}
	switch f.Type {
	case Half:
		if i < 0 || i > math.MaxUint16 {
			return nil, mismatch
		}
		return uint16(i), nil
	case Byte:
		if i < 0 || i > math.MaxUint8 {
			return nil, mismatch
		}
		return uint8(i), nil
	default:
		if i < 0 || i > math.MaxUint32 {
			return nil, mismatch
		}
		return uint32(i), nil
	}
}

// integer extracts an integral value from the numeric types produced by the
// YAML and CBOR decoders. Integral floats are accepted.
func integer(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

// MarshalYAML encodes t as a YAML document.
func MarshalYAML(t *Table) ([]byte, error) {
	return yaml.Marshal(ToDocument(t))
}

// UnmarshalYAML decodes a YAML document into a table.
func UnmarshalYAML(data []byte) (*Table, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("bcsv: decode yaml: %w", err)
	}
	return d.Table()
}

// MarshalCBOR encodes t as a deterministic CBOR document.
func MarshalCBOR(t *Table) ([]byte, error) {
	return codec.Marshal(ToDocument(t))
}

// UnmarshalCBOR decodes a CBOR document into a table.
func UnmarshalCBOR(data []byte) (*Table, error) {
	var d Document
	if err := codec.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("bcsv: decode cbor: %w", err)
	}
	return d.Table()
}
