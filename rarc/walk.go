package rarc

import (
	"errors"
	"io/fs"
	"strings"
)

// Visitor receives the entries of a tree in pre-order.
//
// depth is 0 for the root directory passed to Visit. Returning fs.SkipDir
// from VisitDir skips the directory's children; any other error stops the
// traversal and is returned by Visit.
type Visitor interface {
	VisitDir(d *Dir, depth int) error
	VisitFile(f *File, depth int) error
}

// Visit traverses the tree rooted at root in pre-order, root first.
func Visit(root *Dir, v Visitor) error {
	err := visit(root, v, 0)
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func visit(d *Dir, v Visitor, depth int) error {
	if err := v.VisitDir(d, depth); err != nil {
		if errors.Is(err, fs.SkipDir) {
			return nil
		}
		return err
	}
	for _, c := range d.Children {
		var err error
		switch c := c.(type) {
		case *Dir:
			err = visit(c, v, depth+1)
		case *File:
			err = v.VisitFile(c, depth+1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WalkFunc is called by Walk for every entry below the root, with the
// slash-separated path of the entry relative to the root.
type WalkFunc func(path string, e Entry) error

// Walk calls fn for every entry below root in pre-order. Returning
// fs.SkipDir for a directory skips its children; fs.SkipAll stops the walk
// without error.
func Walk(root *Dir, fn WalkFunc) error {
	err := walk(root, "", fn)
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func walk(d *Dir, prefix string, fn WalkFunc) error {
	for _, c := range d.Children {
		p := prefix + c.EntryName()
		err := fn(p, c)
		sub, isDir := c.(*Dir)
		if err != nil {
			if isDir && errors.Is(err, fs.SkipDir) {
				continue
			}
			return err
		}
		if isDir {
			if err := walk(sub, p+"/", fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitPath normalizes a user-provided path into its elements. Leading,
// trailing and repeated slashes are ignored; "" and "." name the directory
// itself.
func splitPath(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

// Find returns the first entry matching the slash-separated path relative
// to d, or nil. When siblings share a name the earliest one is followed.
func (d *Dir) Find(path string) Entry {
	var cur Entry = d
	for _, elem := range splitPath(path) {
		dir, ok := cur.(*Dir)
		if !ok {
			return nil
		}
		cur = nil
		for _, c := range dir.Children {
			if c.EntryName() == elem {
				cur = c
				break
			}
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// FindAll returns every entry matching path, following all siblings that
// share a name.
func (d *Dir) FindAll(path string) []Entry {
	cur := []Entry{d}
	for _, elem := range splitPath(path) {
		var next []Entry
		for _, e := range cur {
			dir, ok := e.(*Dir)
			if !ok {
				continue
			}
			for _, c := range dir.Children {
				if c.EntryName() == elem {
					next = append(next, c)
				}
			}
		}
		cur = next
	}
	return cur
}

// Files returns every file below d in pre-order.
func (d *Dir) Files() []*File {
	var out []*File
	_ = Walk(d, func(_ string, e Entry) error { //nolint:errcheck // fn never fails
		if f, ok := e.(*File); ok {
			out = append(out, f)
		}
		return nil
	})
	return out
}

// Count returns the number of directories and files below d, excluding d.
func (d *Dir) Count() (dirs, files int) {
	_ = Walk(d, func(_ string, e Entry) error { //nolint:errcheck // fn never fails
		if _, ok := e.(*Dir); ok {
			dirs++
		} else {
			files++
		}
		return nil
	})
	return dirs, files
}
