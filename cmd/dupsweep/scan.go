package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/engine"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/manifest"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/output"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/report"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// runScan is the root command handler.
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags(), args...)
	if err != nil {
		return err
	}

	if err := initializeLogging(cfg); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	if cfg.File != "" {
		printVerbose("Using config file %s", cfg.File)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out io.Writer = os.Stdout
	if getQuiet() {
		out = io.Discard
	}

	result, err := sweep(ctx, cfg, out)
	if errors.Is(err, context.Canceled) {
		printInfo("Interrupted, caches saved.")
	}
	if result != nil {
		recordRun(cfg, result)
	}
	return err
}

// sweep runs the engine over cfg.DirsPath and writes the formatted summary to out.
func sweep(ctx context.Context, cfg *config.Config, out io.Writer) (*types.RunResult, error) {
	formatter, err := output.Get(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: available formats are %v", err, output.Available())
	}

	e := engine.New(
		engine.WithReporter(report.NewLog("engine")),
		engine.WithDryRun(cfg.DryRun),
		engine.WithWorkers(cfg.Workers),
		engine.WithRehash(cfg.Rehash),
		engine.WithCorruptCachePolicy(cfg.CorruptPolicy()),
		engine.WithExclude(cfg.Exclude),
	)

	result, runErr := e.Run(ctx, cfg.DirsPath, cfg.HashAlgo)
	if result == nil {
		return nil, runErr
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return result, fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return result, err
	}

	return result, runErr
}

// recordRun stores runs that found duplicates in the manifest and prunes old
// entries. Failures are logged and do not fail the run.
func recordRun(cfg *config.Config, result *types.RunResult) {
	if !cfg.Manifest.Enabled || viper.GetBool("no_manifest") || len(result.Duplicates) == 0 {
		return
	}

	logger := logging.Get("manifest")

	m, err := manifest.New(cfg.ManifestDir())
	if err != nil {
		logger.Warn("manifest unavailable", "error", err)
		return
	}

	entry, err := m.LogRun(result)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	printVerbose("Recorded run %s", entry.ID)

	if cfg.Manifest.RetentionDays > 0 {
		if removed, err := m.Cleanup(cfg.Manifest.RetentionDays); err != nil {
			logger.Warn("manifest cleanup failed", "error", err)
		} else if removed > 0 {
			logger.Debug("removed old history entries", "count", removed)
		}
	}
}
