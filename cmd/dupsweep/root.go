package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "dupsweep [dir...]",
		Short: "Find and remove duplicate files",
		Long: `Dupsweep walks the configured directories, hashes every file and deletes
later copies of content it has already seen, keeping the first one.

Each directory keeps a results.json cache of file hashes and modification
times, so unchanged files are not hashed again on the next run.

Directories come from dirs_path in the config file (default ./config.json)
or from the command line.

Examples:
  dupsweep                         # Use ./config.json
  dupsweep -c ~/dupsweep.json      # Use another config file
  dupsweep -d ~/Pictures ~/Backup  # Preview duplicates across two trees
  dupsweep -a sha256 -o json       # Hash with SHA-256, print JSON
  dupsweep cache stats ~/Pictures  # Inspect a directory's hash cache
  dupsweep history                 # List previous runs`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runScan,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultConfigPath, "config file")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "no console output except errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output, including every processed file")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	registerScanFlags(rootCmd)
}

// initConfig binds the DUPSWEEP_ environment to the command-line settings.
// The configuration file itself is read by config.Load.
func initConfig() {
	viper.SetEnvPrefix("DUPSWEEP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("%v", err)
	}
	return err
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
