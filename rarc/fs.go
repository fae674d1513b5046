package rarc

import (
	"bytes"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"
)

// Interface compliance.
var (
	_ fs.FS         = (*archiveFS)(nil)
	_ fs.StatFS     = (*archiveFS)(nil)
	_ fs.ReadFileFS = (*archiveFS)(nil)
	_ fs.ReadDirFS  = (*archiveFS)(nil)
)

// FS returns a read-only fs.FS view of the tree rooted at root.
//
// The view implements fs.StatFS, fs.ReadFileFS and fs.ReadDirFS. Directory
// listings are sorted by name; when siblings share a name only the first is
// visible. The tree must not be modified while the view is in use.
func FS(root *Dir) fs.FS {
	return &archiveFS{root: root}
}

type archiveFS struct {
	root *Dir
}

func (a *archiveFS) lookup(op, name string) (Entry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	e := a.root.Find(name)
	if e == nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	return e, nil
}

// Open implements fs.FS.
func (a *archiveFS) Open(name string) (fs.File, error) {
	e, err := a.lookup("open", name)
	if err != nil {
		return nil, err
	}
	info := newInfo(e, name)
	switch e := e.(type) {
	case *Dir:
		return &openDir{info: info, entries: listDir(e)}, nil
	default:
		return &openFile{Reader: bytes.NewReader(e.(*File).Data), info: info}, nil //nolint:forcetypeassert // sealed interface
	}
}

// Stat implements fs.StatFS.
func (a *archiveFS) Stat(name string) (fs.FileInfo, error) {
	e, err := a.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return newInfo(e, name), nil
}

// ReadFile implements fs.ReadFileFS. The returned slice is a copy.
func (a *archiveFS) ReadFile(name string) ([]byte, error) {
	e, err := a.lookup("readfile", name)
	if err != nil {
		return nil, err
	}
	f, ok := e.(*File)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	return bytes.Clone(f.Data), nil
}

// ReadDir implements fs.ReadDirFS.
func (a *archiveFS) ReadDir(name string) ([]fs.DirEntry, error) {
	e, err := a.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	d, ok := e.(*Dir)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return listDir(d), nil
}

// listDir returns the visible children of d sorted by name.
func listDir(d *Dir) []fs.DirEntry {
	seen := make(map[string]bool, len(d.Children))
	out := make([]fs.DirEntry, 0, len(d.Children))
	for _, c := range d.Children {
		name := c.EntryName()
		if seen[name] || !fs.ValidPath(name) || strings.Contains(name, "/") || name == "." {
			continue
		}
		seen[name] = true
		out = append(out, fs.FileInfoToDirEntry(newInfo(c, name)))
	}
	slices.SortFunc(out, func(a, b fs.DirEntry) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// fileInfo implements fs.FileInfo for archive entries.
type fileInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func newInfo(e Entry, path string) *fileInfo {
	name := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	if f, ok := e.(*File); ok {
		return &fileInfo{name: name, size: int64(len(f.Data)), mode: 0o444}
	}
	return &fileInfo{name: name, mode: fs.ModeDir | 0o555}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return time.Time{} }
func (fi *fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *fileInfo) Sys() any           { return nil }

// openFile implements fs.File, io.Seeker and io.ReaderAt over file data.
type openFile struct {
	*bytes.Reader
	info *fileInfo
}

func (f *openFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *openFile) Close() error               { return nil }

// openDir implements fs.ReadDirFile.
type openDir struct {
	info    *fileInfo
	entries []fs.DirEntry
	pos     int
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *openDir) Close() error               { return nil }

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.pos:]
	if n <= 0 {
		d.pos = len(d.entries)
		return slices.Clone(rest), nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	n = min(n, len(rest))
	d.pos += n
	return slices.Clone(rest[:n]), nil
}
