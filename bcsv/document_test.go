package bcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/jsystem/hashname"
)

func sampleTable(tb testing.TB) *Table {
	tb.Helper()
	tbl := NewTable(
		NewField("name", String, 0),
		NewField("scale", Float, 4),
		NewPackedField("lo", PackedWord, 8, 0xFF, 0),
		NewPackedField("hi", PackedWord, 8, 0xFF00, 8),
		NewField("count", Half, 12),
		NewField("flag", Byte, 14),
		NewField(hashname.Placeholder(0xCAFEF00D), Word, 16),
	)
	r := tbl.NewRecord()
	mustSet(tb, r, "name", "ObjA")
	mustSet(tb, r, "scale", float32(0.25))
	mustSet(tb, r, "lo", uint32(1))
	mustSet(tb, r, "hi", uint32(2))
	mustSet(tb, r, "count", uint16(300))
	mustSet(tb, r, "flag", uint8(7))
	mustSet(tb, r, "[CAFEF00D]", uint32(99))
	tbl.NewRecord()
	return tbl
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)
	doc, err := MarshalYAML(tbl)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "type: packed")

	got, err := UnmarshalYAML(doc)
	require.NoError(t, err)
	requireSameRecords(t, tbl, got)
	assert.Equal(t, uint32(0xCAFEF00D), got.Fields[6].Hash)
	assert.Equal(t, mustEncode(t, tbl), mustEncode(t, got))
}

func TestCBORRoundTrip(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)
	doc, err := MarshalCBOR(tbl)
	require.NoError(t, err)

	again, err := MarshalCBOR(tbl)
	require.NoError(t, err)
	assert.Equal(t, doc, again)

	got, err := UnmarshalCBOR(doc)
	require.NoError(t, err)
	requireSameRecords(t, tbl, got)
	assert.Equal(t, mustEncode(t, tbl), mustEncode(t, got))
}

func TestYAMLImportCoercion(t *testing.T) {
	t.Parallel()

	doc := []byte(`
fields:
  - {name: id, type: word, offset: 0, mask: 4294967295}
  - {name: speed, type: float, offset: 4, mask: 4294967295}
  - {name: tag, type: string, offset: 8, mask: 4294967295}
rows:
  - {id: 7, speed: 2, tag: hello}
  - {speed: 1.5}
`)
	tbl, err := UnmarshalYAML(doc)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 2)

	assert.Equal(t, hashname.Hash32("id"), tbl.Fields[0].Hash)
	id, err := tbl.Records[0].Uint32("id")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)
	speed, err := tbl.Records[0].Float32("speed")
	require.NoError(t, err)
	assert.Equal(t, float32(2), speed)

	tag, err := tbl.Records[1].String("tag")
	require.NoError(t, err)
	assert.Empty(t, tag)
}

func TestYAMLImportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"byte overflow", "fields: [{name: b, type: byte, offset: 0, mask: 255}]\nrows: [{b: 300}]", ErrTypeMismatch},
		{"negative word", "fields: [{name: w, type: word, offset: 0, mask: 1}]\nrows: [{w: -1}]", ErrTypeMismatch},
		{"fractional half", "fields: [{name: h, type: half, offset: 0, mask: 1}]\nrows: [{h: 1.5}]", ErrTypeMismatch},
		{"number for string", "fields: [{name: s, type: string, offset: 0, mask: 1}]\nrows: [{s: 4}]", ErrTypeMismatch},
		{"unknown column", "fields: [{name: s, type: string, offset: 0, mask: 1}]\nrows: [{t: x}]", ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := UnmarshalYAML([]byte(tt.doc))
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := UnmarshalYAML([]byte("fields: [{name: x, type: quad}]"))
	require.Error(t, err)
}
