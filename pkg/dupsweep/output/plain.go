package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// PlainFormatter writes one aligned row per duplicate with no styling,
// for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *types.RunResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := fmt.Fprint(tw, "SIZE\tSTATUS\tDUPLICATE\tORIGINAL\n"); err != nil {
		return err
	}
	for _, d := range r.Duplicates {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			types.FormatSize(d.Size), status(d, r.DryRun), d.Path, d.Original); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
