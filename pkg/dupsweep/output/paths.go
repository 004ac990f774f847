package output

import (
	"bytes"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// PathsFormatter writes one duplicate path per line, for piping to other
// tools. In dry-run mode these are the files a real run would delete.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *types.RunResult) error {
	for _, d := range r.Duplicates {
		w.WriteString(d.Path)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{}
	})
}

var _ Formatter = (*PathsFormatter)(nil)

// NullFormatter writes duplicate paths separated by NUL bytes, for xargs -0.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *types.RunResult) error {
	for _, d := range r.Duplicates {
		w.WriteString(d.Path)
		w.WriteByte(0)
	}
	return nil
}

func init() {
	Register("null", func() Formatter {
		return &NullFormatter{}
	})
}

var _ Formatter = (*NullFormatter)(nil)
