package rarc

import (
	"fmt"
	"math"
	"strings"

	"github.com/meigma/jsystem/hashname"
	"github.com/meigma/jsystem/internal/endian"
	"github.com/meigma/jsystem/internal/textenc"
	"github.com/meigma/jsystem/tag"
)

// Name pool offsets of the self and parent links.
const (
	selfNameOffset   = 0
	parentNameOffset = 2

	noContent  = 0xFFFF
	dirLength  = 0x10
	noParent   = -1
	maxEntries = math.MaxUint16
)

// entryPlan is one child record of a directory.
type entryPlan struct {
	name       string
	nameOffset int
	typ        byte
	// contentIndex is noContent for directories.
	contentIndex int
	// offset is the directory index for directories and the content
	// offset for files.
	offset int
	length int
	data   []byte
}

// dirPlan is one directory record and the child records it owns.
type dirPlan struct {
	name       string
	nameOffset int
	parent     int
	children   []entryPlan
}

// planner lays out a tree in one pre-order pass: name pool slots, directory
// indices, content indices and content offsets are all assigned in visit
// order across the whole tree.
type planner struct {
	text    textenc.Codec
	names   []byte
	dirs    []*dirPlan
	stack   []int
	files   int
	content int
	onPath  map[*Dir]bool
	exiting []*Dir
}

func newPlanner(text textenc.Codec) *planner {
	p := &planner{text: text, onPath: make(map[*Dir]bool)}
	p.names = append(p.names, ".\x00..\x00"...)
	return p
}

func (p *planner) addName(name string) (int, error) {
	off := len(p.names)
	if off > math.MaxUint16 {
		return 0, fmt.Errorf("rarc: name pool exceeds 64 KiB at %q: %w", name, ErrTooLarge)
	}
	names, err := p.text.AppendCString(p.names, name)
	if err != nil {
		return 0, fmt.Errorf("rarc: name %q: %w: %w", name, ErrInvalidName, err)
	}
	p.names = names
	return off, nil
}

func checkName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("rarc: entry name %q: %w", name, ErrInvalidName)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("rarc: entry name %q contains a separator: %w", name, ErrInvalidName)
	}
	return nil
}

// parentAt returns the plan of the directory enclosing an entry at depth.
func (p *planner) parentAt(depth int) *dirPlan {
	return p.dirs[p.stack[depth-1]]
}

func (p *planner) VisitDir(d *Dir, depth int) error {
	if depth > 0 {
		if err := checkName(d.Name); err != nil {
			return err
		}
	} else if strings.ContainsAny(d.Name, "/\x00") {
		return fmt.Errorf("rarc: root name %q contains a separator: %w", d.Name, ErrInvalidName)
	}

	p.stack = p.stack[:depth]
	// Release directories whose subtrees are complete.
	for len(p.exiting) > depth {
		delete(p.onPath, p.exiting[len(p.exiting)-1])
		p.exiting = p.exiting[:len(p.exiting)-1]
	}
	if p.onPath[d] {
		return fmt.Errorf("rarc: directory %q contains itself: %w", d.Name, ErrInvalidName)
	}
	p.onPath[d] = true
	p.exiting = append(p.exiting, d)

	nameOffset, err := p.addName(d.Name)
	if err != nil {
		return err
	}
	index := len(p.dirs)
	plan := &dirPlan{name: d.Name, nameOffset: nameOffset, parent: noParent}
	if depth > 0 {
		parent := p.parentAt(depth)
		plan.parent = p.stack[depth-1]
		parent.children = append(parent.children, entryPlan{
			name:         d.Name,
			nameOffset:   nameOffset,
			typ:          typeDir,
			contentIndex: noContent,
			offset:       index,
			length:       dirLength,
		})
	}
	p.dirs = append(p.dirs, plan)
	p.stack = append(p.stack, index)

	if len(d.Children)+2 > math.MaxInt16 {
		return fmt.Errorf("rarc: directory %q has %d children: %w", d.Name, len(d.Children), ErrTooLarge)
	}
	for _, c := range d.Children {
		if c == nil {
			return fmt.Errorf("rarc: directory %q has a nil child: %w", d.Name, ErrInvalidName)
		}
	}
	return nil
}

func (p *planner) VisitFile(f *File, depth int) error {
	if err := checkName(f.Name); err != nil {
		return err
	}
	nameOffset, err := p.addName(f.Name)
	if err != nil {
		return err
	}
	if p.files >= noContent {
		return fmt.Errorf("rarc: more than %d files: %w", noContent, ErrTooLarge)
	}
	if int64(p.content)+int64(len(f.Data)) > math.MaxInt32-alignment {
		return fmt.Errorf("rarc: content exceeds 2 GiB at %q: %w", f.Name, ErrTooLarge)
	}

	parent := p.parentAt(depth)
	parent.children = append(parent.children, entryPlan{
		name:         f.Name,
		nameOffset:   nameOffset,
		typ:          typeFile,
		contentIndex: p.files,
		offset:       p.content,
		length:       len(f.Data),
		data:         f.Data,
	})
	p.files++
	p.content += endian.Align(len(f.Data), alignment)
	return nil
}

// dirTag returns the directory record tag: the first four bytes of the
// ASCII-uppercased stored name.
func dirTag(name string, text textenc.Codec) tag.Tag {
	upper := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, name)
	b, err := text.Encode(upper)
	if err != nil {
		b = []byte(upper)
	}
	return tag.FromString(string(b))
}

// Encode serializes the tree rooted at root.
//
// Entry names must be non-empty, must not be "." or "..", and must not
// contain '/'; violations fail with ErrInvalidName. Trees that exceed the
// format's 16-bit indices fail with ErrTooLarge.
func Encode(root *Dir, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	text := c.text()

	p := newPlanner(text)
	if err := Visit(root, p); err != nil {
		return nil, err
	}

	entryCount := 0
	for _, d := range p.dirs {
		entryCount += len(d.children) + 2
	}
	if entryCount > maxEntries {
		return nil, fmt.Errorf("rarc: %d entries: %w", entryCount, ErrTooLarge)
	}

	dirsLen := endian.Align(len(p.dirs)*dirRecordSize, alignment)
	entriesLen := endian.Align(entryCount*entryRecordSize, alignment)
	namesLen := endian.Align(len(p.names), alignment)
	archiveLength := infoSize + dirsLen + entriesLen + namesLen
	fileLength := headerSize + archiveLength + p.content
	if int64(fileLength) > math.MaxInt32 {
		return nil, fmt.Errorf("rarc: archive of %d bytes: %w", fileLength, ErrTooLarge)
	}

	buf := make([]byte, fileLength)

	tag.RARC.Put(buf[0:])
	endian.PutInt32(buf[4:], int32(fileLength)) //nolint:gosec // bounded above
	endian.PutInt32(buf[8:], headerSize)
	endian.PutInt32(buf[12:], int32(archiveLength)) //nolint:gosec // bounded above
	endian.PutInt32(buf[16:], int32(p.content))     //nolint:gosec // bounded above
	endian.PutInt32(buf[20:], int32(p.content))     //nolint:gosec // bounded above

	infoBuf := buf[headerSize:]
	dirsOffset := infoSize
	entriesOffset := dirsOffset + dirsLen
	namesOffset := entriesOffset + entriesLen
	endian.PutInt32(infoBuf[0:], int32(len(p.dirs)))      //nolint:gosec // bounded by entry count
	endian.PutUint32(infoBuf[4:], uint32(dirsOffset))     //nolint:gosec // bounded above
	endian.PutInt32(infoBuf[8:], int32(entryCount))       //nolint:gosec // bounded above
	endian.PutUint32(infoBuf[12:], uint32(entriesOffset)) //nolint:gosec // bounded above
	endian.PutInt32(infoBuf[16:], int32(namesLen))        //nolint:gosec // bounded above
	endian.PutUint32(infoBuf[20:], uint32(namesOffset))   //nolint:gosec // bounded above

	dirsBuf := infoBuf[dirsOffset:]
	entriesBuf := infoBuf[entriesOffset:]
	contentBuf := buf[headerSize+archiveLength:]
	copy(infoBuf[namesOffset:], p.names)

	next := 0
	for i, d := range p.dirs {
		rec := dirsBuf[i*dirRecordSize:]
		if i == 0 {
			tag.ROOT.Put(rec[0:])
		} else {
			dirTag(d.name, text).Put(rec[0:])
		}
		endian.PutInt32(rec[4:], int32(d.nameOffset)) //nolint:gosec // bounded by name pool check
		endian.PutUint16(rec[8:], hashname.Hash16(d.name))
		endian.PutInt16(rec[10:], int16(len(d.children)+2)) //nolint:gosec // bounded in VisitDir
		endian.PutInt32(rec[12:], int32(next))              //nolint:gosec // bounded above

		for _, e := range d.children {
			putEntry(entriesBuf[next*entryRecordSize:], e)
			if e.typ == typeFile {
				copy(contentBuf[e.offset:], e.data)
			}
			next++
		}
		putEntry(entriesBuf[next*entryRecordSize:], entryPlan{
			name: ".", nameOffset: selfNameOffset, typ: typeDir,
			contentIndex: noContent, offset: i, length: dirLength,
		})
		next++
		putEntry(entriesBuf[next*entryRecordSize:], entryPlan{
			name: "..", nameOffset: parentNameOffset, typ: typeDir,
			contentIndex: noContent, offset: d.parent, length: dirLength,
		})
		next++
	}

	c.log().Debug("encoded rarc",
		"root", root.Name,
		"directories", len(p.dirs),
		"files", p.files,
		"size", len(buf))

	if !c.compress {
		return buf, nil
	}
	return c.encoder.Compress(buf), nil
}

func putEntry(b []byte, e entryPlan) {
	endian.PutUint16(b[0:], uint16(e.contentIndex)) //nolint:gosec // at most noContent
	endian.PutUint16(b[2:], hashname.Hash16(e.name))
	b[4] = e.typ
	b[5] = 0
	endian.PutUint16(b[6:], uint16(e.nameOffset)) //nolint:gosec // bounded by name pool check
	endian.PutInt32(b[8:], int32(e.offset))       //nolint:gosec // bounded by content check
	endian.PutInt32(b[12:], int32(e.length))      //nolint:gosec // bounded by content check
	endian.PutUint32(b[16:], 0)
}

var _ Visitor = (*planner)(nil)
