// Package index builds and reads the manifest index of an archive: a
// FlatBuffers table listing every path with its kind, size, content index
// and digest, plus the digest of the encoded archive itself.
//
// An index lets tools inspect a published archive without fetching or
// decoding its content.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/jsystem/internal/fb"
	"github.com/meigma/jsystem/rarc"
)

// Version is the index format version written by Build.
const Version = 1

// NoContent is the content index recorded for directories.
const NoContent = 0xFFFF

// ErrInvalid is returned when index data cannot be parsed.
var ErrInvalid = errors.New("index: invalid data")

// Kind distinguishes files from directories.
type Kind uint8

// Entry kinds.
const (
	KindFile Kind = Kind(fb.EntryKindFile)
	KindDir  Kind = Kind(fb.EntryKindDir)
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// entry is one row of an index before serialization.
type entry struct {
	path         string
	kind         Kind
	size         uint32
	contentIndex uint16
	digest       digest.Digest
}

// Build describes the tree rooted at root and the encoded archive that
// holds it. Paths are slash separated and relative to root; siblings that
// share a name are recorded once, for the first of them. compressed records
// whether archive is stored compressed (Yaz0 or zstd).
func Build(root *rarc.Dir, archive []byte, compressed bool) []byte {
	var entries []entry
	seen := make(map[string]bool)
	content := 0
	_ = rarc.Walk(root, func(path string, e rarc.Entry) error { //nolint:errcheck // fn never fails
		var ent entry
		switch e := e.(type) {
		case *rarc.Dir:
			ent = entry{path: path, kind: KindDir, contentIndex: NoContent}
		case *rarc.File:
			ent = entry{
				path:         path,
				kind:         KindFile,
				size:         uint32(len(e.Data)), //nolint:gosec // archive content is 32-bit
				contentIndex: uint16(content),     //nolint:gosec // archive file count is 16-bit
				digest:       digest.FromBytes(e.Data),
			}
			content++
		}
		if !seen[path] {
			seen[path] = true
			entries = append(entries, ent)
		}
		return nil
	})
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.path, b.path) })

	return build(entries, root.Name, digest.FromBytes(archive), uint64(len(archive)), compressed)
}

func build(entries []entry, rootName string, archiveDigest digest.Digest, archiveSize uint64, compressed bool) []byte {
	builder := flatbuffers.NewBuilder(1024)

	// Build entries in reverse order (FlatBuffers requirement)
	entryOffsets := make([]flatbuffers.UOffsetT, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]

		pathOffset := builder.CreateString(e.path)
		var digestOffset flatbuffers.UOffsetT
		if e.digest != "" {
			digestOffset = builder.CreateString(e.digest.String())
		}

		fb.EntryStart(builder)
		fb.EntryAddPath(builder, pathOffset)
		fb.EntryAddKind(builder, fb.EntryKind(e.kind))
		fb.EntryAddSize(builder, e.size)
		fb.EntryAddContentIndex(builder, e.contentIndex)
		if digestOffset != 0 {
			fb.EntryAddDigest(builder, digestOffset)
		}
		entryOffsets[i] = fb.EntryEnd(builder)
	}

	fb.IndexStartEntriesVector(builder, len(entries))
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(entries))

	digestOffset := builder.CreateString(archiveDigest.String())
	rootOffset := builder.CreateString(rootName)

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, Version)
	fb.IndexAddArchiveDigest(builder, digestOffset)
	fb.IndexAddArchiveSize(builder, archiveSize)
	fb.IndexAddCompressed(builder, compressed)
	fb.IndexAddRootName(builder, rootOffset)
	fb.IndexAddEntries(builder, entriesOffset)
	indexOffset := fb.IndexEnd(builder)

	fb.FinishIndexBuffer(builder, indexOffset)
	return builder.FinishedBytes()
}

// Index provides access to manifest entries.
//
// Entries are sorted by path, giving O(log n) lookups and prefix scans.
// Accessors return read-only EntryView values that alias index data.
type Index struct {
	data []byte
	root *fb.Index
}

// Load parses a FlatBuffers-encoded index.
//
// The provided data is retained by the index; callers must not modify it
// after calling Load. Every entry is visited once so that malformed data
// fails here rather than in later accessors.
func Load(data []byte) (idx *Index, err error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalid, len(data))
	}

	defer func() {
		if r := recover(); r != nil {
			idx, err = nil, fmt.Errorf("%w: %v", ErrInvalid, r)
		}
	}()

	root := fb.GetRootAsIndex(data, 0)
	if v := root.Version(); v != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalid, v)
	}
	if _, err := digest.Parse(string(root.ArchiveDigest())); err != nil {
		return nil, fmt.Errorf("%w: archive digest: %w", ErrInvalid, err)
	}
	var e fb.Entry
	var prev []byte
	for i := range root.EntriesLength() {
		root.Entries(&e, i)
		p := e.Path()
		if i > 0 && bytes.Compare(prev, p) >= 0 {
			return nil, fmt.Errorf("%w: entries not sorted at %q", ErrInvalid, p)
		}
		prev = p
		_ = e.Digest()
	}

	return &Index{data: data, root: root}, nil
}

// Data returns the encoded index.
func (idx *Index) Data() []byte {
	return idx.data
}

// Version returns the format version of the index.
func (idx *Index) Version() uint32 {
	return idx.root.Version()
}

// ArchiveDigest returns the digest of the encoded archive.
func (idx *Index) ArchiveDigest() digest.Digest {
	return digest.Digest(idx.root.ArchiveDigest())
}

// ArchiveSize returns the size of the encoded archive in bytes.
func (idx *Index) ArchiveSize() uint64 {
	return idx.root.ArchiveSize()
}

// Compressed reports whether the archive was stored compressed.
func (idx *Index) Compressed() bool {
	return idx.root.Compressed()
}

// RootName returns the name of the archive's root directory.
func (idx *Index) RootName() string {
	return string(idx.root.RootName())
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	return idx.root.EntriesLength()
}

// Lookup returns a read-only view of the entry for the given path.
//
// The returned view is only valid while the index remains alive.
func (idx *Index) Lookup(path string) (EntryView, bool) {
	var e fb.Entry
	if !idx.root.EntriesByKey(&e, path) {
		return EntryView{}, false
	}
	return EntryView{entry: e}, true
}

// Entries returns an iterator over all entries in path order.
func (idx *Index) Entries() iter.Seq[EntryView] {
	return func(yield func(EntryView) bool) {
		var e fb.Entry
		for i := range idx.root.EntriesLength() {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !yield(EntryView{entry: e}) {
				return
			}
		}
	}
}

// EntriesWithPrefix returns an iterator over entries whose path starts with
// prefix, in path order.
func (idx *Index) EntriesWithPrefix(prefix string) iter.Seq[EntryView] {
	return func(yield func(EntryView) bool) {
		n := idx.root.EntriesLength()
		if n == 0 {
			return
		}
		prefixBytes := []byte(prefix)

		start := sort.Search(n, func(i int) bool {
			var e fb.Entry
			if !idx.root.Entries(&e, i) {
				return false
			}
			return bytes.Compare(e.Path(), prefixBytes) >= 0
		})

		var e fb.Entry
		for i := start; i < n; i++ {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !bytes.HasPrefix(e.Path(), prefixBytes) {
				return
			}
			if !yield(EntryView{entry: e}) {
				return
			}
		}
	}
}

// EntryView provides a read-only view of an index entry.
//
// The view is only valid while the Index that produced it remains alive.
type EntryView struct {
	entry fb.Entry
}

// Path returns the slash-separated path of the entry.
func (ev EntryView) Path() string {
	return string(ev.entry.Path())
}

// Kind returns whether the entry is a file or a directory.
func (ev EntryView) Kind() Kind {
	return Kind(ev.entry.Kind())
}

// IsDir reports whether the entry is a directory.
func (ev EntryView) IsDir() bool {
	return ev.Kind() == KindDir
}

// Size returns the file size in bytes, or 0 for directories.
func (ev EntryView) Size() uint32 {
	return ev.entry.Size()
}

// ContentIndex returns the file's position in the archive content region,
// or NoContent for directories.
func (ev EntryView) ContentIndex() uint16 {
	return ev.entry.ContentIndex()
}

// Digest returns the digest of the file content, or "" for directories.
func (ev EntryView) Digest() digest.Digest {
	return digest.Digest(ev.entry.Digest())
}
