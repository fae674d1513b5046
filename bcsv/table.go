package bcsv

import (
	"fmt"
	"slices"
)

// Table is a decoded BCSV file: a schema and its rows.
type Table struct {
	Fields  []Field
	Records []*Record
}

// NewTable returns an empty table with the given schema.
func NewTable(fields ...Field) *Table {
	return &Table{Fields: slices.Clone(fields)}
}

// NewRecord appends a record holding default values and returns it.
func (t *Table) NewRecord() *Record {
	r := NewRecord(t.Fields)
	t.Records = append(t.Records, r)
	return r
}

// Stride returns the encoded row size: the end of the furthest field.
func (t *Table) Stride() int {
	stride := 0
	for _, f := range t.Fields {
		stride = max(stride, f.end())
	}
	return stride
}

// Lookup returns the schema field called name.
func (t *Table) Lookup(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Column returns the encoded value of the field called name for every
// record, substituting defaults where a record lacks the field.
func (t *Table) Column(name string) ([]any, error) {
	j := slices.IndexFunc(t.Fields, func(f Field) bool { return f.Name == name })
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	out := make([]any, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.valueFor(t.Fields[j], j)
	}
	return out, nil
}
