package jsystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/jsystem/internal/batch"
	"github.com/meigma/jsystem/rarc"
)

// ReadTree builds an archive tree from the contents of dir.
//
// The root directory is named after dir's base name. Entries keep the
// order returned by the filesystem (sorted by name), empty directories
// are preserved, and symbolic links are rejected with ErrIrregularFile.
func ReadTree(dir string) (*rarc.Dir, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return TreeFromFS(root.FS(), filepath.Base(abs))
}

// TreeFromFS builds an archive tree from fsys with the given root name.
func TreeFromFS(fsys fs.FS, rootName string) (*rarc.Dir, error) {
	top := rarc.NewDir(rootName)
	dirs := map[string]*rarc.Dir{".": top}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == "." {
			return nil
		}
		parent := dirs[pathDir(path)]

		switch {
		case d.IsDir():
			sub := rarc.NewDir(d.Name())
			parent.Add(sub)
			dirs[path] = sub
		case d.Type().IsRegular():
			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return err
			}
			parent.Add(rarc.NewFile(d.Name(), data))
		default:
			return fmt.Errorf("%w: %s", ErrIrregularFile, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return top, nil
}

// pathDir returns the slash-separated parent of a valid fs path.
func pathDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// WriteOption configures WriteTree.
type WriteOption func(*writeConfig)

type writeConfig struct {
	overwrite bool
	perm      os.FileMode
}

// WriteWithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func WriteWithOverwrite(overwrite bool) WriteOption {
	return func(c *writeConfig) {
		c.overwrite = overwrite
	}
}

// WriteWithPerm sets the permission bits of written files. The default is 0644.
func WriteWithPerm(perm os.FileMode) WriteOption {
	return func(c *writeConfig) {
		c.perm = perm
	}
}

// WriteTree extracts the children of root into dest.
//
// Files are written atomically using temp files and renames. Entries whose
// names are not valid path elements are skipped, as are later siblings
// sharing a name with an earlier one.
func WriteTree(root *rarc.Dir, dest string, opts ...WriteOption) error {
	cfg := writeConfig{perm: 0o644}
	for _, opt := range opts {
		opt(&cfg)
	}

	fsys := rarc.FS(root)
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		target := filepath.Join(dest, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !cfg.overwrite {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		return batch.WriteFile(target, data, cfg.perm)
	})
}
