package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/manifest"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View previous runs",
	Long: `View the history of dupsweep runs.

Every run that finds duplicates is recorded with the duplicates it removed
(or would have removed, for dry runs) and the original each one matched.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a run",
	Long:  `Display the duplicates handled by a run. A unique ID prefix is accepted.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns the manifest for the configured directory together
// with the loaded configuration.
func getManifest() (*manifest.Manifest, *config.Config, error) {
	cfg, err := config.LoadOptional(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	m, err := manifest.New(cfg.ManifestDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize manifest: %w", err)
	}
	return m, cfg, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'dupsweep' to remove duplicates.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%-36s  %-8s  %-14s  %-10s  %-12s\n", "ID", "TYPE", "WHEN", "FILES", "RECLAIMED")
	fmt.Fprintln(out, strings.Repeat("-", 88))

	for _, entry := range entries {
		fmt.Fprintf(out, "%-36s  %-8s  %-14s  %-10d  %-12s\n",
			truncateString(entry.ID, 36),
			entry.Operation,
			humanize.Time(entry.Timestamp),
			entry.Summary.Duplicates,
			types.FormatSize(entry.Summary.BytesReclaimed),
		)
	}

	fmt.Fprintln(out, strings.Repeat("-", 88))
	fmt.Fprintf(out, "\nShowing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Fprintln(out, "Use 'dupsweep history show <id>' for details on a specific entry.")

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nRun Details")
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "ID:          %s\n", entry.ID)
	fmt.Fprintf(out, "Timestamp:   %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Operation:   %s\n", entry.Operation)
	fmt.Fprintf(out, "Algorithm:   %s\n", entry.Algorithm)
	fmt.Fprintf(out, "Directories: %s\n", strings.Join(entry.Directories, ", "))
	fmt.Fprintf(out, "Files:       %s (%s hashed)\n",
		types.FormatCount(entry.Summary.TotalFiles), types.FormatCount(entry.Summary.HashedFiles))
	fmt.Fprintf(out, "Duplicates:  %d (%d removed)\n", entry.Summary.Duplicates, entry.Summary.Removed)
	fmt.Fprintf(out, "Reclaimed:   %s\n", types.FormatSize(entry.Summary.BytesReclaimed))
	fmt.Fprintf(out, "Duration:    %s\n", entry.Summary.Duration)

	if len(entry.Files) > 0 {
		fmt.Fprintln(out, "\nDuplicates:")
		fmt.Fprintln(out, strings.Repeat("-", 60))

		limit := 50
		if len(entry.Files) < limit {
			limit = len(entry.Files)
		}

		for _, file := range entry.Files[:limit] {
			fmt.Fprintf(out, "%-12s  %s\n", types.FormatSize(file.Size), file.Path)
			fmt.Fprintf(out, "%-12s  = %s\n", "", file.Original)
		}

		if len(entry.Files) > limit {
			fmt.Fprintf(out, "\n... and %d more files\n", len(entry.Files)-limit)
		}
	}

	return nil
}

func runHistoryClean(cmd *cobra.Command, args []string) error {
	m, cfg, err := getManifest()
	if err != nil {
		return err
	}

	retentionDays := cfg.Manifest.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", retentionDays)

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
