package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage directory hash caches",
	Long: `Commands for managing the per-directory hash caches.

Every scanned directory keeps a results.json file mapping each file to its
hash and modification time. Without arguments the commands act on the
directories listed in the configuration.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [dir...]",
	Short: "Delete cached hashes",
	Long:  `Removes results.json from each directory. The next run hashes every file again.`,
	RunE:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [dir...]",
	Short: "Show cache statistics",
	Long:  `Displays the location, entry count, size and last write time of each directory's cache.`,
	RunE:  runCacheStats,
}

var cacheListCmd = &cobra.Command{
	Use:   "list [dir...]",
	Short: "List cached hashes",
	Long:  `Prints every cached file with its hash, sorted by path.`,
	RunE:  runCacheList,
}

var cachePathCmd = &cobra.Command{
	Use:   "path [dir...]",
	Short: "Show cache locations",
	Long:  `Prints the path of each directory's results.json.`,
	RunE:  runCachePath,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cacheRoots returns the directories named on the command line, or the
// configured ones.
func cacheRoots(args []string) ([]string, error) {
	dirs := args
	if len(dirs) == 0 {
		cfg, err := config.LoadOptional(cfgFile)
		if err != nil {
			return nil, err
		}
		dirs = cfg.DirsPath
	}
	if len(dirs) == 0 {
		return nil, errors.New("no directories given and none configured")
	}

	roots := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	roots, err := cacheRoots(args)
	if err != nil {
		return err
	}
	for _, root := range roots {
		if err := cache.Clear(root); err != nil {
			return fmt.Errorf("%s: %w", root, err)
		}
		printInfo("Cleared %s", filepath.Join(root, cache.FileName))
	}
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	roots, err := cacheRoots(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, root := range roots {
		if i > 0 {
			fmt.Fprintln(out)
		}
		info, err := cache.Stat(root)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "Cache location: %s\n", filepath.Join(root, cache.FileName))
			fmt.Fprintln(out, "Cache: empty (no cache file)")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read cache of %s: %w", root, err)
		}

		fmt.Fprintf(out, "Cache location: %s\n", info.Path)
		fmt.Fprintf(out, "Entries: %s\n", types.FormatCount(int64(info.Entries)))
		fmt.Fprintf(out, "Size: %s\n", types.FormatSize(info.Size))
		fmt.Fprintf(out, "Last modified: %s\n", info.ModTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	roots, err := cacheRoots(args)
	if err != nil {
		return err
	}
	return listCaches(cmd.OutOrStdout(), roots)
}

// listCaches writes "hash  path" lines for each root's cache.
func listCaches(out io.Writer, roots []string) error {
	for _, root := range roots {
		hc, err := cache.Load(root)
		if err != nil {
			return fmt.Errorf("failed to read cache of %s: %w", root, err)
		}
		for _, path := range hc.Paths() {
			entry, _ := hc.Lookup(path)
			fmt.Fprintf(out, "%s  %s\n", entry.Hash, path)
		}
	}
	return nil
}

func runCachePath(cmd *cobra.Command, args []string) error {
	roots, err := cacheRoots(args)
	if err != nil {
		return err
	}
	for _, root := range roots {
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(root, cache.FileName))
	}
	return nil
}
