package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/output"
)

// registerScanFlags adds the flags of the scan run. They are read through
// config.Load, which maps them onto the matching configuration keys.
func registerScanFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolP("dry-run", "d", false, "report duplicates without deleting them")
	flags.IntP("workers", "w", config.DefaultWorkers, "number of files hashed concurrently")
	flags.Bool("rehash", false, "ignore cached hashes and hash every file")
	flags.StringSliceP("exclude", "e", nil, "glob patterns to skip (can be repeated)")
	flags.StringP("algo", "a", config.DefaultHashAlgo,
		fmt.Sprintf("hash algorithm (%s)", strings.Join(hasher.Algorithms(), ", ")))
	flags.StringP("output", "o", config.DefaultOutput,
		fmt.Sprintf("summary format (%s)", strings.Join(output.Available(), ", ")))
	flags.Bool("no-manifest", false, "do not record this run in the history")

	_ = viper.BindPFlag("no_manifest", flags.Lookup("no-manifest"))
}

// parseRotationConfig converts the configured rotation settings, falling back
// to the defaults for sizes that cannot be parsed.
func parseRotationConfig(c config.RotationConfig) logging.RotationConfig {
	rc := logging.RotationConfig{
		MaxSize:    logging.DefaultRotationConfig().MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
	}
	if c.MaxSize != "" {
		if size, err := humanize.ParseBytes(c.MaxSize); err == nil && size > 0 {
			rc.MaxSize = int64(size)
		}
	}
	return rc
}

// consoleLevel returns the stderr log level for the current flags.
func consoleLevel() string {
	switch {
	case getQuiet():
		return ""
	case getVerbose():
		return "debug"
	default:
		return "info"
	}
}

// initializeLogging starts file and console logging from the configuration.
func initializeLogging(cfg *config.Config) error {
	lc := logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Rotation:     parseRotationConfig(cfg.Logging.Rotation),
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel(),
	}
	if getVerbose() && lc.Level != "debug" {
		lc.Level = "debug"
	}
	if err := logging.Init(lc); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}
