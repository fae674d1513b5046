package rarc

import (
	"bytes"

	"github.com/meigma/jsystem/internal/endian"
	"github.com/meigma/jsystem/internal/jtype"
	"github.com/meigma/jsystem/internal/textenc"
	"github.com/meigma/jsystem/tag"
	"github.com/meigma/jsystem/yaz0"
)

// On-disk record sizes and entry types.
const (
	headerSize      = 0x20
	infoSize        = 0x20
	dirRecordSize   = 0x10
	entryRecordSize = 0x14

	typeDir  = 0x02
	typeFile = 0x11

	alignment = 32
)

// header is the 32-byte file header.
type header struct {
	fileLength    int32
	headerLength  int32
	archiveLength int32
	contentLength int32
}

// info is the 32-byte archive header at headerLength. Offsets are relative
// to the start of info.
type info struct {
	dirCount      int32
	dirsOffset    uint32
	entryCount    int32
	entriesOffset uint32
	namesLength   int32
	namesOffset   uint32
}

type decoder struct {
	data    endian.View
	dirs    endian.View
	entries endian.View
	names   endian.View
	content int64
	info    info
	text    textenc.Codec
	seen    []bool
}

// Decode parses an archive. Yaz0-compressed input is decompressed first.
//
// A structurally invalid buffer fails with a *FormatError and no tree is
// returned.
func Decode(data []byte, opts ...Option) (*Dir, error) {
	c := newConfig(opts)

	for yaz0.IsCompressed(data) {
		raw, err := yaz0.Decompress(data)
		if err != nil {
			return nil, err
		}
		c.log().Debug("unwrapped yaz0 archive", "compressed", len(data), "size", len(raw))
		data = raw
	}

	v := endian.NewView(formatName, data)
	magic, err := v.Slice(0, 4)
	if err != nil {
		return nil, err
	}
	if got := tag.Parse(magic); got != tag.RARC {
		return nil, jtype.MagicError(formatName, 0, tag.RARC.String(), got.String())
	}

	d := &decoder{data: v, text: c.text()}
	h, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	if err := d.readInfo(h); err != nil {
		return nil, err
	}

	root, err := d.readDir(0)
	if err != nil {
		return nil, err
	}

	dirs, files := root.Count()
	c.log().Debug("decoded rarc",
		"root", root.Name,
		"directories", dirs+1,
		"files", files,
		"size", len(data))
	return root, nil
}

func (d *decoder) readHeader() (header, error) {
	raw, err := d.data.Slice(0, headerSize)
	if err != nil {
		return header{}, err
	}
	h := header{
		fileLength:    endian.Int32(raw[4:]),
		headerLength:  endian.Int32(raw[8:]),
		archiveLength: endian.Int32(raw[12:]),
		contentLength: endian.Int32(raw[16:]),
	}
	if h.headerLength < headerSize {
		return h, d.data.Errorf(8, "header length 0x%X smaller than header", h.headerLength)
	}
	if h.archiveLength < infoSize {
		return h, d.data.Errorf(12, "archive length 0x%X smaller than archive header", h.archiveLength)
	}
	d.content = int64(h.headerLength) + int64(h.archiveLength)
	return h, nil
}

func (d *decoder) readInfo(h header) error {
	infoView, err := d.data.Sub(int(h.headerLength))
	if err != nil {
		return err
	}
	raw, err := infoView.Slice(0, infoSize)
	if err != nil {
		return err
	}
	d.info = info{
		dirCount:      endian.Int32(raw[0:]),
		dirsOffset:    endian.Uint32(raw[4:]),
		entryCount:    endian.Int32(raw[8:]),
		entriesOffset: endian.Uint32(raw[12:]),
		namesLength:   endian.Int32(raw[16:]),
		namesOffset:   endian.Uint32(raw[20:]),
	}
	in := d.info

	switch {
	case in.dirCount <= 0:
		return infoView.Errorf(0, "directory count %d", in.dirCount)
	case in.entryCount < 0:
		return infoView.Errorf(8, "negative entry count %d", in.entryCount)
	case in.namesLength < 0:
		return infoView.Errorf(16, "negative names length %d", in.namesLength)
	}
	for _, off := range []struct {
		at    int
		value uint32
	}{{4, in.dirsOffset}, {12, in.entriesOffset}, {20, in.namesOffset}} {
		if off.value < infoSize || int64(off.value) > int64(infoView.Len()) {
			return infoView.Errorf(off.at, "table offset 0x%X outside archive", off.value)
		}
	}

	if d.dirs, err = infoView.Sub(int(in.dirsOffset)); err != nil {
		return err
	}
	if d.entries, err = infoView.Sub(int(in.entriesOffset)); err != nil {
		return err
	}
	if d.names, err = infoView.Window(int(in.namesOffset), int(in.namesLength)); err != nil {
		return err
	}
	if int64(in.dirCount)*dirRecordSize > int64(d.dirs.Len()) {
		return infoView.Errorf(0, "%d directories exceed buffer", in.dirCount)
	}
	if int64(in.entryCount)*entryRecordSize > int64(d.entries.Len()) {
		return infoView.Errorf(8, "%d entries exceed buffer", in.entryCount)
	}
	d.seen = make([]bool, in.dirCount)
	return nil
}

func (d *decoder) name(off int) (string, error) {
	raw, err := d.names.CString(off)
	if err != nil {
		return "", err
	}
	s, err := d.text.Decode(raw)
	if err != nil {
		return "", d.names.Errorf(off, "undecodable name: %v", err)
	}
	return s, nil
}

// readDir builds directory index and, recursively, its children. Every
// directory may be reached once; a second reference is a cycle or a shared
// subtree, neither of which the format permits.
func (d *decoder) readDir(index int32) (*Dir, error) {
	recOff := int(index) * dirRecordSize
	if index < 0 || index >= d.info.dirCount {
		return nil, d.dirs.Errorf(0, "directory index %d out of range [0, %d)", index, d.info.dirCount)
	}
	if d.seen[index] {
		return nil, d.dirs.Errorf(recOff, "directory %d referenced more than once", index)
	}
	d.seen[index] = true

	rec, err := d.dirs.Slice(recOff, dirRecordSize)
	if err != nil {
		return nil, err
	}
	name, err := d.name(int(endian.Int32(rec[4:])))
	if err != nil {
		return nil, err
	}
	count := endian.Int16(rec[10:])
	first := endian.Int32(rec[12:])
	if count < 0 || first < 0 || int64(first)+int64(count) > int64(d.info.entryCount) {
		return nil, d.dirs.Errorf(recOff+10, "entries [%d, %d) outside entry table of %d",
			first, int64(first)+int64(count), d.info.entryCount)
	}

	dir := &Dir{Name: name}
	for k := first; k < first+int32(count); k++ {
		child, err := d.readEntry(int(k) * entryRecordSize)
		if err != nil {
			return nil, err
		}
		if child != nil {
			dir.Children = append(dir.Children, child)
		}
	}
	return dir, nil
}

// readEntry decodes the entry record at off. It returns nil for the "."
// and ".." entries.
func (d *decoder) readEntry(off int) (Entry, error) {
	rec, err := d.entries.Slice(off, entryRecordSize)
	if err != nil {
		return nil, err
	}
	name, err := d.name(int(endian.Uint16(rec[6:])))
	if err != nil {
		return nil, err
	}
	if name == "." || name == ".." {
		return nil, nil //nolint:nilnil // self and parent links carry no content
	}

	typ := rec[4]
	contentOffset := endian.Int32(rec[8:])
	length := endian.Int32(rec[12:])

	switch typ {
	case typeDir:
		sub, err := d.readDir(contentOffset)
		if err != nil {
			return nil, err
		}
		// The directory record carries the authoritative name.
		return sub, nil
	case typeFile:
		if contentOffset < 0 || length < 0 {
			return nil, d.entries.Errorf(off+8, "file %q has negative extent", name)
		}
		start := d.content + int64(contentOffset)
		if start+int64(length) > int64(d.data.Len()) {
			return nil, d.entries.Errorf(off+8, "file %q [0x%X, +0x%X) exceeds buffer of %d bytes",
				name, start, length, d.data.Len())
		}
		raw, err := d.data.Slice(int(start), int(length))
		if err != nil {
			return nil, err
		}
		return &File{Name: name, Data: bytes.Clone(raw)}, nil
	default:
		return nil, d.entries.Errorf(off+4, "entry %q has unknown type 0x%02X", name, typ)
	}
}
