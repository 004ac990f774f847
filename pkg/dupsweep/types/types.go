// Package types provides core data types for the dupsweep duplicate remover.
// It includes structures for per-directory and per-run results, progress
// snapshots and non-fatal scan errors, along with size formatting helpers.
package types

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
)

// ScanError represents a non-fatal error encountered while processing a file.
// It pairs a file path with the error message for debugging and reporting.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Stage names the step that failed: "stat", "hash", "delete" or "walk".
	Stage string `json:"stage"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// Duplicate describes one file classified as a copy of an earlier file.
type Duplicate struct {
	// Path is the duplicate that was removed (or would be, in dry-run mode).
	Path string `json:"path"`

	// Original is the first-seen file with the same content, which is kept.
	Original string `json:"original"`

	// Hash is the hex digest shared by both files.
	Hash string `json:"hash"`

	// Size is the duplicate's size in bytes at the time it was classified.
	Size int64 `json:"size"`

	// Removed is true once the file has actually been deleted.
	Removed bool `json:"removed"`
}

// DirectoryResult summarizes the processing of one configured root directory.
type DirectoryResult struct {
	Root        string        `json:"root"`
	Files       int64         `json:"files"`
	Hashed      int64         `json:"hashed"`
	CacheHits   int64         `json:"cache_hits"`
	CacheMisses int64         `json:"cache_misses"`
	Duplicates  int64         `json:"duplicates"`
	Skipped     int64         `json:"skipped"`
	CacheSize   int           `json:"cache_size"`
	Elapsed     time.Duration `json:"elapsed"`
}

// RunResult contains the aggregated results of one invocation across all
// configured directories.
type RunResult struct {
	// Algorithm is the digest algorithm used for this run.
	Algorithm string `json:"algorithm"`

	// DryRun is true when duplicates were only reported, not deleted.
	DryRun bool `json:"dry_run"`

	// Directories holds per-root results in processing order.
	Directories []DirectoryResult `json:"directories"`

	// Duplicates lists every duplicate found, in classification order.
	Duplicates []Duplicate `json:"duplicates"`

	// TotalFiles is the number of files observed during the walks.
	TotalFiles int64 `json:"total_files"`

	// HashedFiles is the number of files with a known hash (cached or fresh).
	HashedFiles int64 `json:"hashed_files"`

	// BytesReclaimed is the summed size of the removed duplicates.
	BytesReclaimed int64 `json:"bytes_reclaimed"`

	// Elapsed is the total time taken by the run.
	Elapsed time.Duration `json:"elapsed"`

	// Errors contains per-file errors that were skipped over.
	Errors []ScanError `json:"errors,omitempty"`
}

// Removed returns the number of duplicates actually deleted.
func (r *RunResult) Removed() int {
	n := 0
	for _, d := range r.Duplicates {
		if d.Removed {
			n++
		}
	}
	return n
}

// Progress reports real-time run progress.
type Progress struct {
	// Root is the directory currently being processed.
	Root string `json:"root"`

	// Path is the file that was just processed.
	Path string `json:"path"`

	// Seq is the number of files hashed so far in this run.
	Seq int64 `json:"seq"`

	// Total is the number of files discovered so far in this run, counting
	// the file just processed and any skipped before it.
	Total int64 `json:"total"`

	// Cached is true when the hash came from the directory's cache.
	Cached bool `json:"cached"`
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount formats a count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
