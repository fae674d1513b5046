package bcsv

import (
	"fmt"
	"slices"
)

// Record is one row of a table: an ordered set of fields and their values.
//
// Values always have the Go type of their field (see FieldType.Default).
// Set enforces this at the point of assignment.
type Record struct {
	fields []Field
	values []any
}

// NewRecord returns a record holding the default value of every field.
func NewRecord(fields []Field) *Record {
	r := &Record{
		fields: slices.Clone(fields),
		values: make([]any, len(fields)),
	}
	for i, f := range r.fields {
		r.values[i] = f.Type.Default()
	}
	return r
}

// Fields returns the record's fields in order.
func (r *Record) Fields() []Field {
	return slices.Clone(r.fields)
}

// Len returns the number of fields in the record.
func (r *Record) Len() int {
	return len(r.fields)
}

func (r *Record) find(name string) int {
	for i, f := range r.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the record has a field called name.
func (r *Record) Has(name string) bool {
	return r.find(name) >= 0
}

// Get returns the value of the field called name.
func (r *Record) Get(name string) (any, bool) {
	i := r.find(name)
	if i < 0 {
		return nil, false
	}
	return r.values[i], true
}

// Set assigns v to the field called name. v must have the Go type of the
// field; a mismatch fails with a *TypeMismatchError.
func (r *Record) Set(name string, v any) error {
	i := r.find(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	f := r.fields[i]
	if !f.Type.accepts(v) {
		return &TypeMismatchError{Field: name, Expected: f.Type.goType(), Found: fmt.Sprintf("%T", v)}
	}
	r.values[i] = v
	return nil
}

// Delete removes the field called name from the record. Encoding a table
// whose record lacks a field writes the field's default value.
func (r *Record) Delete(name string) bool {
	i := r.find(name)
	if i < 0 {
		return false
	}
	r.fields = slices.Delete(r.fields, i, i+1)
	r.values = slices.Delete(r.values, i, i+1)
	return true
}

// Clone returns an independent copy of r.
func (r *Record) Clone() *Record {
	return &Record{fields: slices.Clone(r.fields), values: slices.Clone(r.values)}
}

// Uint32 returns the value of a Word or PackedWord field.
func (r *Record) Uint32(name string) (uint32, error) {
	return get[uint32](r, name)
}

// Float32 returns the value of a Float field.
func (r *Record) Float32(name string) (float32, error) {
	return get[float32](r, name)
}

// Uint16 returns the value of a Half field.
func (r *Record) Uint16(name string) (uint16, error) {
	return get[uint16](r, name)
}

// Uint8 returns the value of a Byte field.
func (r *Record) Uint8(name string) (uint8, error) {
	return get[uint8](r, name)
}

// String returns the value of a String field.
func (r *Record) String(name string) (string, error) {
	return get[string](r, name)
}

func get[T any](r *Record, name string) (T, error) {
	var zero T
	i := r.find(name)
	if i < 0 {
		return zero, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	v, ok := r.values[i].(T)
	if !ok {
		return zero, &TypeMismatchError{
			Field:    name,
			Expected: fmt.Sprintf("%T", zero),
			Found:    fmt.Sprintf("%T", r.values[i]),
		}
	}
	return v, nil
}

// valueFor returns the value to encode for field, the j-th field of the
// table schema. A missing field, or one whose value has the wrong Go type,
// yields the type default.
func (r *Record) valueFor(field Field, j int) any {
	i := j
	if j >= len(r.fields) || r.fields[j] != field {
		i = r.find(field.Name)
	}
	if i < 0 || !field.Type.accepts(r.values[i]) {
		return field.Type.Default()
	}
	return r.values[i]
}
