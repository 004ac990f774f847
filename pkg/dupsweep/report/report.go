// Package report delivers scan events (directory start, per-file progress,
// duplicates, skipped files) to whoever displays them.
package report

import (
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// Reporter receives scan events. Calls arrive from the goroutine running the
// scan, in traversal order.
type Reporter interface {
	// DirectoryStarted is called before a root directory's cache is loaded.
	DirectoryStarted(root string, index, count int)

	// FileProcessed is called once a file's hash is known.
	FileProcessed(p types.Progress)

	// FileSkipped is called when a file is dropped because of a per-file error.
	FileSkipped(e types.ScanError)

	// DuplicateFound is called after a duplicate has been deleted (or, in
	// dry-run mode, identified).
	DuplicateFound(d types.Duplicate)

	// DirectoryFinished is called after a root directory's cache has been saved.
	DirectoryFinished(r types.DirectoryResult)
}

// Nop discards every event.
type Nop struct{}

func (Nop) DirectoryStarted(string, int, int)       {}
func (Nop) FileProcessed(types.Progress)            {}
func (Nop) FileSkipped(types.ScanError)             {}
func (Nop) DuplicateFound(types.Duplicate)          {}
func (Nop) DirectoryFinished(types.DirectoryResult) {}

// Log writes events to a component logger. Per-file progress goes out at
// debug level so long runs stay readable at info.
type Log struct {
	logger *logging.Logger
}

// NewLog returns a reporter logging under the given component name.
func NewLog(component string) *Log {
	return &Log{logger: logging.Get(component)}
}

func (l *Log) DirectoryStarted(root string, index, count int) {
	l.logger.Info("processing directory", "root", root, "dir", index+1, "of", count)
}

func (l *Log) FileProcessed(p types.Progress) {
	l.logger.Debug("processing file", "seq", p.Seq, "total", p.Total, "cached", p.Cached, "path", p.Path)
}

func (l *Log) FileSkipped(e types.ScanError) {
	l.logger.Debug("skipping file", "path", e.Path, "stage", e.Stage, "error", e.Error)
}

func (l *Log) DuplicateFound(d types.Duplicate) {
	msg := "duplicate removed"
	if !d.Removed {
		msg = "duplicate found"
	}
	l.logger.Info(msg, "path", d.Path, "original", d.Original, "size", types.FormatSize(d.Size))
}

func (l *Log) DirectoryFinished(r types.DirectoryResult) {
	l.logger.Info("directory done",
		"root", r.Root,
		"files", r.Files,
		"hashed", r.Hashed,
		"cache_hits", r.CacheHits,
		"duplicates", r.Duplicates,
		"skipped", r.Skipped,
		"elapsed", r.Elapsed.Round(1e6),
	)
}

var (
	_ Reporter = Nop{}
	_ Reporter = (*Log)(nil)
)
