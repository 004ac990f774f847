// Package index tracks which file was seen first for each content hash.
package index

import "sync"

// Outcome is the classification of a file by RecordOrDetect.
type Outcome struct {
	// Duplicate is true when another file with the same hash was recorded earlier.
	Duplicate bool

	// Original is the path of the earlier file. Empty for first-seen files.
	Original string
}

// FirstSeen reports whether the file was registered as the original.
func (o Outcome) FirstSeen() bool { return !o.Duplicate }

// Index maps a content hash to the first path recorded with it.
// It is safe for concurrent use and is meant to span every directory of a
// run, so a copy in a later directory is detected against an earlier one.
type Index struct {
	mu    sync.Mutex
	first map[string]string
}

// New returns an empty index.
func New() *Index {
	return &Index{first: make(map[string]string)}
}

// RecordOrDetect registers path as the original for hash if the hash is new.
// If the hash was already recorded, the index is left untouched and the
// earlier path is returned in the outcome.
func (x *Index) RecordOrDetect(hash, path string) Outcome {
	x.mu.Lock()
	defer x.mu.Unlock()

	if original, ok := x.first[hash]; ok {
		return Outcome{Duplicate: true, Original: original}
	}
	x.first[hash] = path
	return Outcome{}
}

// Len returns the number of distinct hashes recorded.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.first)
}
