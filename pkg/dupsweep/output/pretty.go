package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// PrettyFormatter renders a styled report for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *types.RunResult) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))

	if len(r.Errors) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatErrors(r.Errors))
	}
	return nil
}

func (f *PrettyFormatter) formatHeader(r *types.RunResult) string {
	var lines []string

	for _, d := range r.Directories {
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			LabelStyle.Render("Directory:"),
			ValueStyle.Render(d.Root),
			MutedStyle.Render(fmt.Sprintf("%s files, %s cached, %s hashed",
				types.FormatCount(d.Files), types.FormatCount(d.CacheHits), types.FormatCount(d.Hashed))),
		))
	}

	mode := SuccessStyle.Render("delete")
	if r.DryRun {
		mode = WarningStyle.Bold(true).Render("dry-run")
	}
	lines = append(lines, fmt.Sprintf("%s %s  %s %s",
		LabelStyle.Render("Algorithm:"), ValueStyle.Render(r.Algorithm),
		LabelStyle.Render("Mode:"), mode))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatTable(r *types.RunResult) string {
	if len(r.Duplicates) == 0 {
		return MutedStyle.Render("  No duplicates found\n")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		TableHeaderStyle.Render(padLeft("SIZE", 10)),
		TableHeaderStyle.Render("DUPLICATE"),
		TableHeaderStyle.Render("ORIGINAL")))

	for _, d := range r.Duplicates {
		size := SizeStyle.Render(padLeft(types.FormatSize(d.Size), 10))
		path := PathStyle.Render(d.Path)
		if !d.Removed {
			path = WarningStyle.Render(d.Path)
		}
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", size, path, MutedStyle.Render(d.Original)))
	}
	return sb.String()
}

func (f *PrettyFormatter) formatFooter(r *types.RunResult) string {
	reclaimLabel := "Reclaimed:"
	if r.DryRun {
		reclaimLabel = "Reclaimable:"
	}

	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Files:"), ValueStyle.Render(types.FormatCount(r.TotalFiles))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Duplicates:"), ValueStyle.Render(fmt.Sprintf("%d", len(r.Duplicates)))),
		fmt.Sprintf("%s %s", LabelStyle.Render(reclaimLabel), SizeStyle.Render(types.FormatSize(reclaimable(r)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Took:"), ValueStyle.Render(formatDuration(r.Elapsed.Seconds()))),
	}
	return FooterBox.Render(strings.Join(parts, "  "))
}

func (f *PrettyFormatter) formatErrors(errs []types.ScanError) string {
	var sb strings.Builder
	sb.WriteString(WarningStyle.Bold(true).Render(fmt.Sprintf("Skipped %d file(s):", len(errs))))
	sb.WriteString("\n")
	for _, e := range errs {
		sb.WriteString(ErrorStyle.Render(fmt.Sprintf("  [%s] %s: %s", e.Stage, e.Path, e.Error)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// reclaimable is the space freed by the run, or that would be freed in dry-run mode.
func reclaimable(r *types.RunResult) int64 {
	if !r.DryRun {
		return r.BytesReclaimed
	}
	var total int64
	for _, d := range r.Duplicates {
		total += d.Size
	}
	return total
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// formatDuration formats a number of seconds in a human-friendly way.
func formatDuration(sec float64) string {
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
