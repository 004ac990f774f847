// Package cache persists content hashes between runs so unchanged files are
// not hashed again. Each scanned root directory owns one record, FileName,
// mapping absolute file paths to their last known hash and modification time.
//
// A HashCache is owned by a single goroutine for the duration of one
// directory's scan and is not safe for concurrent use.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/goccy/go-json"
)

// HashCache is the in-memory form of one root directory's cache record.
type HashCache struct {
	path    string
	entries map[string]Entry
}

// New returns an empty cache that will be saved under root.
func New(root string) *HashCache {
	return &HashCache{
		path:    filepath.Join(root, FileName),
		entries: make(map[string]Entry),
	}
}

// Load reads the cache record of root. A missing record yields an empty
// cache. A record that exists but cannot be decoded yields a *ParseError
// together with an empty cache, so callers may choose to carry on.
func Load(root string) (*HashCache, error) {
	c := New(root)

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("reading cache %s: %w", c.path, err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return c, &ParseError{Path: c.path, Err: err}
	}
	for path, entry := range entries {
		c.entries[path] = entry
	}

	return c, nil
}

// Path returns the location of the persisted record.
func (c *HashCache) Path() string {
	return c.path
}

// Lookup returns the stored entry for path.
func (c *HashCache) Lookup(path string) (Entry, bool) {
	e, ok := c.entries[path]
	return e, ok
}

// IsValid reports whether entry still describes a file whose current
// modification time is mtime. Any difference, forward or backward,
// invalidates the entry.
func IsValid(entry Entry, mtime float64) bool {
	return entry.Mtime == mtime
}

// Update inserts or overwrites the entry for path.
func (c *HashCache) Update(path, hash string, mtime float64) {
	c.entries[path] = Entry{Hash: hash, Mtime: mtime}
}

// Remove drops the entry for path, if any.
func (c *HashCache) Remove(path string) {
	delete(c.entries, path)
}

// Prune drops every entry whose path is not in keep and returns how many
// entries were removed.
func (c *HashCache) Prune(keep mapset.Set[string]) int {
	removed := 0
	for path := range c.entries {
		if !keep.Contains(path) {
			delete(c.entries, path)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries.
func (c *HashCache) Len() int {
	return len(c.entries)
}

// Paths returns the cached paths in lexical order.
func (c *HashCache) Paths() []string {
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Save writes the full mapping to the record, replacing the previous one.
// The data goes to a temporary file first and is renamed into place so an
// interrupted save never leaves a truncated record behind.
func (c *HashCache) Save() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	tmpPath := c.path + tempSuffix
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing cache %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing cache %s: %w", c.path, err)
	}

	return nil
}

// Info describes a persisted cache record.
type Info struct {
	Path    string
	Entries int
	Size    int64
	ModTime time.Time
}

// Stat loads the record of root and reports its size and entry count.
// It returns an error wrapping os.ErrNotExist when root has no record.
func Stat(root string) (*Info, error) {
	path := filepath.Join(root, FileName)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	c, err := Load(root)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:    path,
		Entries: c.Len(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}, nil
}

// Clear removes the record of root. Removing a missing record is not an error.
func Clear(root string) error {
	err := os.Remove(filepath.Join(root, FileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
