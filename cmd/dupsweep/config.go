package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage dupsweep configuration settings.

Configuration is read from the JSON file given by --config (default ./config.json).

Environment variables override file settings using the DUPSWEEP_ prefix:
  DUPSWEEP_HASH_ALGO=sha256
  DUPSWEEP_DRY_RUN=true
  DUPSWEEP_DIRS_PATH=/data/photos,/data/backup`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after defaults, file and environment are applied.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir...]",
	Short: "Create a starter configuration file",
	Long:  `Write a configuration file at the --config path if none exists, listing the given directories.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the absolute path of the configuration file in use.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// envOverrides lists the environment variables that change configuration keys.
var envOverrides = []string{
	"DUPSWEEP_DIRS_PATH",
	"DUPSWEEP_HASH_ALGO",
	"DUPSWEEP_DRY_RUN",
	"DUPSWEEP_REHASH",
	"DUPSWEEP_WORKERS",
	"DUPSWEEP_EXCLUDE",
	"DUPSWEEP_OUTPUT",
	"DUPSWEEP_CACHE_CORRUPT_POLICY",
	"DUPSWEEP_MANIFEST_ENABLED",
	"DUPSWEEP_MANIFEST_PATH",
	"DUPSWEEP_MANIFEST_RETENTION_DAYS",
	"DUPSWEEP_LOGGING_LEVEL",
	"DUPSWEEP_LOGGING_PATH",
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOptional(cfgFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.File != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", cfg.File)
	} else {
		fmt.Fprintf(out, "Config file: %s (not found, using defaults)\n\n", cfgFile)
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "dirs_path:              %s\n", strings.Join(cfg.DirsPath, ", "))
	fmt.Fprintf(out, "hash_algo:              %s\n", cfg.HashAlgo)
	fmt.Fprintf(out, "dry_run:                %t\n", cfg.DryRun)
	fmt.Fprintf(out, "rehash:                 %t\n", cfg.Rehash)
	fmt.Fprintf(out, "workers:                %d\n", cfg.Workers)
	fmt.Fprintf(out, "exclude:                %v\n", cfg.Exclude)
	fmt.Fprintf(out, "output:                 %s\n", cfg.Output)
	fmt.Fprintf(out, "cache.corrupt_policy:   %s\n", cfg.CorruptPolicy())
	fmt.Fprintf(out, "logging.level:          %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "manifest.enabled:       %t\n", cfg.Manifest.Enabled)
	fmt.Fprintf(out, "manifest.path:          %s\n", cfg.ManifestDir())
	fmt.Fprintf(out, "manifest.retention:     %d days\n", cfg.Manifest.RetentionDays)

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	anyOverrides := false
	for _, name := range envOverrides {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(out, "(none)")
	}

	return nil
}

// runConfigInit creates a starter config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	created, err := config.WriteDefault(cfgFile, args...)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if !created {
		printInfo("Config file already exists: %s", cfgFile)
		return nil
	}
	printInfo("Created config file: %s", cfgFile)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if _, err := os.Stat(path); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist")
	}
	return nil
}
