package rarc

import "slices"

// Entry is a node of an archive tree: either *Dir or *File.
type Entry interface {
	// EntryName returns the entry's name within its parent directory.
	EntryName() string
	isEntry()
}

// Dir is a directory and its ordered children.
type Dir struct {
	Name     string
	Children []Entry
}

// File is a named byte payload.
type File struct {
	Name string
	Data []byte
}

// NewDir returns a directory holding children in order.
func NewDir(name string, children ...Entry) *Dir {
	return &Dir{Name: name, Children: children}
}

// NewFile returns a file holding data. data is not copied.
func NewFile(name string, data []byte) *File {
	return &File{Name: name, Data: data}
}

// EntryName returns d.Name.
func (d *Dir) EntryName() string { return d.Name }

// EntryName returns f.Name.
func (f *File) EntryName() string { return f.Name }

func (*Dir) isEntry()  {}
func (*File) isEntry() {}

// Add appends entries to the directory's children.
func (d *Dir) Add(entries ...Entry) {
	d.Children = append(d.Children, entries...)
}

// Clone returns a deep copy of the tree rooted at d.
func (d *Dir) Clone() *Dir {
	out := &Dir{Name: d.Name, Children: make([]Entry, len(d.Children))}
	for i, c := range d.Children {
		switch c := c.(type) {
		case *Dir:
			out.Children[i] = c.Clone()
		case *File:
			out.Children[i] = &File{Name: c.Name, Data: slices.Clone(c.Data)}
		}
	}
	return out
}

// Equal reports whether the trees rooted at d and other have the same
// names, nesting and file contents. A nil and an empty file payload are
// equal.
func (d *Dir) Equal(other *Dir) bool {
	if d.Name != other.Name || len(d.Children) != len(other.Children) {
		return false
	}
	for i, c := range d.Children {
		switch c := c.(type) {
		case *Dir:
			o, ok := other.Children[i].(*Dir)
			if !ok || !c.Equal(o) {
				return false
			}
		case *File:
			o, ok := other.Children[i].(*File)
			if !ok || c.Name != o.Name || string(c.Data) != string(o.Data) {
				return false
			}
		}
	}
	return true
}
