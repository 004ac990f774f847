// Package manifest keeps a history of dupsweep runs: which duplicates were
// removed, which original each one matched, and how much space was freed.
package manifest

import "time"

// OperationType represents the kind of run that produced an entry.
type OperationType string

const (
	// OpDedupe is a run that deleted duplicates.
	OpDedupe OperationType = "dedupe"
	// OpDryRun is a run that only identified duplicates.
	OpDryRun OperationType = "dry-run"
)

// Entry represents one recorded run.
type Entry struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Operation   OperationType `json:"operation"`
	Directories []string      `json:"directories"`
	Algorithm   string        `json:"algorithm"`
	Files       []FileRecord  `json:"files"`
	Summary     Summary       `json:"summary"`
}

// FileRecord describes one duplicate handled by the run.
type FileRecord struct {
	Path      string     `json:"path"`
	Original  string     `json:"original"`
	Hash      string     `json:"hash"`
	Size      int64      `json:"size"`
	RemovedAt *time.Time `json:"removed_at,omitempty"`
}

// Summary contains the run totals.
type Summary struct {
	TotalFiles     int64  `json:"total_files"`
	HashedFiles    int64  `json:"hashed_files"`
	Duplicates     int64  `json:"duplicates"`
	Removed        int64  `json:"removed"`
	BytesReclaimed int64  `json:"bytes_reclaimed"`
	Errors         int64  `json:"errors"`
	Duration       string `json:"duration"`
}
