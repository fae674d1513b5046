package hashname

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
)

// Table maps 32-bit field hashes back to names.
//
// A Table is an explicitly constructed lookup service; independent tables
// can coexist. Lookups are safe for concurrent use with each other. Load
// and Reset replace the contents under a write lock.
//
// A nil *Table is valid and resolves every hash to its placeholder.
type Table struct {
	mu    sync.RWMutex
	names map[uint32]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{names: make(map[uint32]string)}
}

// Load clears the table and fills it from r, one name per line. Blank lines
// are skipped and a trailing carriage return is trimmed. When two distinct
// names share a hash, the first one loaded is kept and later ones are
// silently dropped.
//
// On a read error the table is left as it was before the call.
func (t *Table) Load(r io.Reader) error {
	names := make(map[uint32]string)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		name := strings.TrimSuffix(sc.Text(), "\r")
		if name == "" {
			continue
		}
		h := Hash32(name)
		if _, ok := names[h]; !ok {
			names[h] = name
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	t.names = names
	t.mu.Unlock()
	return nil
}

// LoadFile loads the word list at path. See Load.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // caller-provided word list
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Load(f)
}

// Add registers name unless another name already owns its hash. It reports
// whether name was added.
func (t *Table) Add(name string) bool {
	h := Hash32(name)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.names == nil {
		t.names = make(map[uint32]string)
	}
	if _, ok := t.names[h]; ok {
		return false
	}
	t.names[h] = name
	return true
}

// Reset removes every registered name.
func (t *Table) Reset() {
	t.mu.Lock()
	t.names = make(map[uint32]string)
	t.mu.Unlock()
}

// Len returns the number of registered names.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Lookup returns the name registered for hash.
func (t *Table) Lookup(hash uint32) (string, bool) {
	if t == nil {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	name, ok := t.names[hash]
	return name, ok
}

// Resolve returns the name registered for hash, or its placeholder.
func (t *Table) Resolve(hash uint32) string {
	if name, ok := t.Lookup(hash); ok {
		return name
	}
	return Placeholder(hash)
}
