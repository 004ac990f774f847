package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// ErrNotFound is returned by Get for unknown entry IDs.
var ErrNotFound = errors.New("manifest entry not found")

// Manifest stores run entries as JSON files in a directory.
type Manifest struct {
	dir string
	mu  sync.Mutex
}

// New creates a Manifest rooted at dir. The directory is created on first write.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir}, nil
}

// Dir returns the manifest directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// LogRun records a finished run and returns the created entry.
func (m *Manifest) LogRun(r *types.RunResult) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	op := OpDedupe
	if r.DryRun {
		op = OpDryRun
	}

	entry := &Entry{
		ID:        generateID(op, now),
		Timestamp: now,
		Operation: op,
		Algorithm: r.Algorithm,
		Files:     make([]FileRecord, 0, len(r.Duplicates)),
		Summary: Summary{
			TotalFiles:     r.TotalFiles,
			HashedFiles:    r.HashedFiles,
			Duplicates:     int64(len(r.Duplicates)),
			Removed:        int64(r.Removed()),
			BytesReclaimed: r.BytesReclaimed,
			Errors:         int64(len(r.Errors)),
			Duration:       r.Elapsed.Round(time.Millisecond).String(),
		},
	}
	for _, d := range r.Directories {
		entry.Directories = append(entry.Directories, d.Root)
	}
	for _, d := range r.Duplicates {
		rec := FileRecord{Path: d.Path, Original: d.Original, Hash: d.Hash, Size: d.Size}
		if d.Removed {
			removedAt := now
			rec.RemovedAt = &removedAt
		}
		entry.Files = append(entry.Files, rec)
	}

	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}

	logging.Get("manifest").Debug("run recorded", "id", entry.ID, "files", len(entry.Files))
	return entry, nil
}

// writeEntry writes an entry atomically via a temp file and rename.
func (m *Manifest) writeEntry(entry *Entry) error {
	if err := m.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	filePath := filepath.Join(m.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// List returns entries newest first. A limit of 0 or less returns all of them.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get retrieves an entry by ID. A unique ID prefix is accepted as well.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}

	var match *Entry
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
		if strings.HasPrefix(entries[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous entry ID prefix: %s", id)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// readAll parses every entry file, skipping unreadable ones.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(m.dir, f.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			logging.Get("manifest").Warn("skipping unreadable entry", "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Cleanup removes entries whose files are older than retentionDays and
// returns how many were removed.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(m.dir, f.Name())); err != nil {
				logging.Get("manifest").Warn("failed to remove entry", "file", f.Name(), "error", err)
				continue
			}
			removed++
		}
	}

	return removed, nil
}

// generateID creates an ID like "dedupe-2024-06-15T10-30-00-1b4e28ba".
func generateID(op OperationType, ts time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%s", op, ts.Format("2006-01-02T15-04-05"), suffix)
}
