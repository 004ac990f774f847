package output

import (
	"bytes"

	"github.com/goccy/go-json"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

type jsonOutput struct {
	Duplicates  []jsonDuplicate `json:"duplicates"`
	Directories []jsonDirectory `json:"directories"`
	Errors      []jsonError     `json:"errors,omitempty"`
	Summary     jsonSummary     `json:"summary"`
}

type jsonDuplicate struct {
	Path      string `json:"path"`
	Original  string `json:"original"`
	Hash      string `json:"hash"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
	Removed   bool   `json:"removed"`
}

type jsonDirectory struct {
	Root       string `json:"root"`
	Files      int64  `json:"files"`
	Hashed     int64  `json:"hashed"`
	CacheHits  int64  `json:"cache_hits"`
	Duplicates int64  `json:"duplicates"`
	Skipped    int64  `json:"skipped"`
	CacheSize  int    `json:"cache_size"`
	Duration   string `json:"duration"`
}

type jsonError struct {
	Path  string `json:"path"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

type jsonSummary struct {
	Algorithm      string `json:"algorithm"`
	DryRun         bool   `json:"dry_run"`
	TotalFiles     int64  `json:"total_files"`
	HashedFiles    int64  `json:"hashed_files"`
	Duplicates     int    `json:"duplicates"`
	Removed        int    `json:"removed"`
	BytesReclaimed int64  `json:"bytes_reclaimed"`
	Duration       string `json:"duration"`
}

// JSONFormatter writes a single indented JSON document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *types.RunResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSON(r))
}

func buildJSON(r *types.RunResult) jsonOutput {
	out := jsonOutput{
		Duplicates:  make([]jsonDuplicate, len(r.Duplicates)),
		Directories: make([]jsonDirectory, len(r.Directories)),
		Summary: jsonSummary{
			Algorithm:      r.Algorithm,
			DryRun:         r.DryRun,
			TotalFiles:     r.TotalFiles,
			HashedFiles:    r.HashedFiles,
			Duplicates:     len(r.Duplicates),
			Removed:        r.Removed(),
			BytesReclaimed: r.BytesReclaimed,
			Duration:       r.Elapsed.String(),
		},
	}
	for i, d := range r.Duplicates {
		out.Duplicates[i] = toJSONDuplicate(d)
	}
	for i, d := range r.Directories {
		out.Directories[i] = jsonDirectory{
			Root:       d.Root,
			Files:      d.Files,
			Hashed:     d.Hashed,
			CacheHits:  d.CacheHits,
			Duplicates: d.Duplicates,
			Skipped:    d.Skipped,
			CacheSize:  d.CacheSize,
			Duration:   d.Elapsed.String(),
		}
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, jsonError(e))
	}
	return out
}

func toJSONDuplicate(d types.Duplicate) jsonDuplicate {
	return jsonDuplicate{
		Path:      d.Path,
		Original:  d.Original,
		Hash:      d.Hash,
		Size:      d.Size,
		SizeHuman: types.FormatSize(d.Size),
		Removed:   d.Removed,
	}
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter writes one compact JSON object per duplicate, for jq and
// other line-oriented tools.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *types.RunResult) error {
	for _, d := range r.Duplicates {
		data, err := json.Marshal(toJSONDuplicate(d))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

var _ Formatter = (*JSONLFormatter)(nil)
