// Package engine runs the duplicate sweep: for each configured root it loads
// the root's hash cache, walks the tree, hashes new or changed files, keeps
// the first file seen for every hash and deletes later copies, then saves
// the cache.
//
// Basic usage:
//
//	e := engine.New(engine.WithDryRun(true), engine.WithReporter(report.NewLog("engine")))
//	result, err := e.Run(ctx, []string{"/data/photos", "/data/backup"}, "md5")
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/index"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/report"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

var (
	// ErrNotDirectory is returned when a configured root is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrOverlappingRoots is returned when one configured root lies inside
	// another, which would make every file in the inner root its own copy.
	ErrOverlappingRoots = errors.New("overlapping root directories")
)

// Engine finds and removes duplicate files across a list of root directories.
// An Engine runs one sweep at a time.
type Engine struct {
	reporter      report.Reporter
	deleter       Deleter
	index         *index.Index
	dryRun        bool
	rehash        bool
	workers       int
	corruptPolicy cache.CorruptPolicy
	exclude       []string

	// Run-wide counters, readable from other goroutines through Progress.
	totalFiles  atomic.Int64
	hashedFiles atomic.Int64
	currentRoot atomic.Value
	currentPath atomic.Value

	logger *logging.Logger
}

// New creates an Engine. Without options it deletes duplicates permanently,
// trusts cached hashes, and resets malformed caches.
func New(opts ...Option) *Engine {
	e := &Engine{
		reporter:      report.Nop{},
		deleter:       RemoveDeleter{},
		workers:       DefaultWorkers,
		corruptPolicy: cache.PolicyReset,
		logger:        logging.Get("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.index == nil {
		e.index = index.New()
	}
	e.currentRoot.Store("")
	e.currentPath.Store("")
	return e
}

// Progress returns a snapshot of the running sweep.
func (e *Engine) Progress() types.Progress {
	return types.Progress{
		Root:  e.currentRoot.Load().(string),
		Path:  e.currentPath.Load().(string),
		Seq:   e.hashedFiles.Load(),
		Total: e.totalFiles.Load(),
	}
}

// candidate is a discovered file on its way through one directory's scan.
type candidate struct {
	path   string
	total  int64
	size   int64
	mtime  float64
	hash   string
	cached bool
	err    error
}

// Run processes the directories in order with the named hash algorithm.
//
// Per-file problems (files that vanish or cannot be read, failed deletions)
// are collected in RunResult.Errors and do not stop the run. A missing or
// unreadable root, a cache that cannot be saved, or a malformed cache under
// cache.PolicyFail ends the run with an error; the returned result then
// covers the directories finished so far. When ctx is cancelled the run
// stops between files, saves the current directory's cache, and returns
// ctx.Err().
func (e *Engine) Run(ctx context.Context, directories []string, algorithm string) (*types.RunResult, error) {
	start := time.Now()

	algo, err := hasher.Lookup(algorithm)
	if err != nil {
		return nil, err
	}

	directories, err = e.planRoots(directories)
	if err != nil {
		return nil, err
	}

	e.totalFiles.Store(0)
	e.hashedFiles.Store(0)

	result := &types.RunResult{
		Algorithm:   algo.Name,
		DryRun:      e.dryRun,
		Directories: make([]types.DirectoryResult, 0, len(directories)),
		Duplicates:  []types.Duplicate{},
	}

	e.logger.Info("run started", "directories", len(directories), "algorithm", algo.Name, "dry_run", e.dryRun, "workers", e.workers)

	for i, dir := range directories {
		dirResult, err := e.processDirectory(ctx, dir, i, len(directories), algo, result)
		if dirResult != nil {
			result.Directories = append(result.Directories, *dirResult)
		}
		if err != nil {
			result.TotalFiles = e.totalFiles.Load()
			result.HashedFiles = e.hashedFiles.Load()
			result.Elapsed = time.Since(start)
			return result, err
		}
	}

	result.TotalFiles = e.totalFiles.Load()
	result.HashedFiles = e.hashedFiles.Load()
	result.Elapsed = time.Since(start)

	e.logger.Info("run finished",
		"files", result.TotalFiles,
		"hashed", result.HashedFiles,
		"duplicates", len(result.Duplicates),
		"reclaimed", types.FormatSize(result.BytesReclaimed),
		"errors", len(result.Errors),
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)
	return result, nil
}

// processDirectory runs load, walk, hash, classify, prune and save for one root.
func (e *Engine) processDirectory(ctx context.Context, dir string, idx, count int, algo hasher.Algorithm, result *types.RunResult) (*types.DirectoryResult, error) {
	start := time.Now()

	root, err := resolveRoot(dir)
	if err != nil {
		return nil, err
	}

	e.currentRoot.Store(root)
	e.reporter.DirectoryStarted(root, idx, count)
	log := e.logger.With("root", root)

	hc, err := cache.Load(root)
	if err != nil {
		if !errors.Is(err, cache.ErrParse) || e.corruptPolicy == cache.PolicyFail {
			return nil, err
		}
		log.Warn("discarding malformed cache", "path", hc.Path(), "error", err)
	}

	dr := &types.DirectoryResult{Root: root}
	seen := mapset.NewThreadUnsafeSet[string]()
	skip := func(se types.ScanError) {
		dr.Skipped++
		result.Errors = append(result.Errors, se)
		e.reporter.FileSkipped(se)
		log.Debug("skipping file", "path", se.Path, "stage", se.Stage, "error", se.Error)
	}

	found, walkErr := discover(ctx, root, e.exclude)
	for _, se := range found.errors {
		skip(se)
	}

	runErr := walkErr
	if runErr == nil {
		observed := e.totalFiles.Load() + int64(len(found.files))
		candidates := e.statAll(found.files, hc, dr, skip)
		runErr = e.hashMisses(ctx, algo, candidates)
		if runErr == nil {
			runErr = e.classify(ctx, candidates, hc, dr, result, seen, skip)
		}
		e.totalFiles.Store(observed)
	}

	// Entries of files not visited are only dropped after a complete walk.
	if runErr == nil && len(found.errors) == 0 {
		if pruned := hc.Prune(seen); pruned > 0 {
			log.Debug("pruned stale cache entries", "count", pruned)
		}
	}

	if err := hc.Save(); err != nil {
		return nil, err
	}

	dr.CacheSize = hc.Len()
	dr.Elapsed = time.Since(start)
	e.reporter.DirectoryFinished(*dr)
	return dr, runErr
}

// resolveRoot returns the absolute, cleaned form of dir after checking that
// it is a readable directory.
func resolveRoot(dir string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	f, err := os.Open(root)
	if err != nil {
		return "", fmt.Errorf("directory %s: %w", root, err)
	}
	_ = f.Close()

	return root, nil
}

// planRoots drops repeated roots and rejects roots nested inside one
// another. Roots are compared by absolute path with symlinks resolved when
// the root exists; missing roots are left for processDirectory to report.
func (e *Engine) planRoots(directories []string) ([]string, error) {
	planned := make([]string, 0, len(directories))
	keys := make([]string, 0, len(directories))

	for _, dir := range directories {
		key, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", dir, err)
		}
		if resolved, err := filepath.EvalSymlinks(key); err == nil {
			key = resolved
		}

		repeated := false
		for i, prev := range keys {
			if key == prev {
				repeated = true
				break
			}
			if isWithin(key, prev) || isWithin(prev, key) {
				return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingRoots, planned[i], dir)
			}
		}
		if repeated {
			e.logger.Warn("skipping repeated directory", "directory", dir)
			continue
		}

		planned = append(planned, dir)
		keys = append(keys, key)
	}
	return planned, nil
}

// isWithin reports whether path lies strictly below dir.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// statAll records the current size and mtime of every discovered file and
// takes the hash from the cache where the entry is still valid. Files that
// can no longer be stat'ed are dropped. Each candidate carries the run's
// file count up to and including itself, which classify publishes as the
// total so far.
func (e *Engine) statAll(paths []string, hc *cache.HashCache, dr *types.DirectoryResult, skip func(types.ScanError)) []*candidate {
	base := e.totalFiles.Load()
	candidates := make([]*candidate, 0, len(paths))
	for i, path := range paths {
		dr.Files++

		info, err := os.Stat(path)
		if err != nil {
			skip(types.ScanError{Path: path, Stage: "stat", Error: err.Error()})
			continue
		}

		c := &candidate{
			path:  path,
			total: base + int64(i+1),
			size:  info.Size(),
			mtime: cache.MtimeOf(info.ModTime()),
		}
		if !e.rehash {
			if entry, ok := hc.Lookup(path); ok && cache.IsValid(entry, c.mtime) {
				c.hash = entry.Hash
				c.cached = true
			}
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// hashMisses computes the hash of every candidate not served from the cache,
// using up to e.workers goroutines. Each goroutine writes only its own
// candidate.
func (e *Engine) hashMisses(ctx context.Context, algo hasher.Algorithm, candidates []*candidate) error {
	var g errgroup.Group
	g.SetLimit(e.workers)

	for _, c := range candidates {
		if c.cached {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c.hash, c.err = algo.HashFile(c.path)
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}

// classify walks the candidates in traversal order, updating the cache,
// the duplicate index and the result. seen collects every path that keeps
// its cache entry.
func (e *Engine) classify(ctx context.Context, candidates []*candidate, hc *cache.HashCache, dr *types.DirectoryResult, result *types.RunResult, seen mapset.Set[string], skip func(types.ScanError)) error {
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.currentPath.Store(c.path)
		e.totalFiles.Store(c.total)

		if c.err != nil {
			skip(types.ScanError{Path: c.path, Stage: "hash", Error: c.err.Error()})
			continue
		}

		if c.cached {
			dr.CacheHits++
		} else {
			dr.CacheMisses++
			dr.Hashed++
			hc.Update(c.path, c.hash, c.mtime)
		}

		seq := e.hashedFiles.Add(1)
		e.reporter.FileProcessed(types.Progress{
			Root:   dr.Root,
			Path:   c.path,
			Seq:    seq,
			Total:  c.total,
			Cached: c.cached,
		})

		outcome := e.index.RecordOrDetect(c.hash, c.path)
		if outcome.FirstSeen() || outcome.Original == c.path {
			// A path recorded by an earlier pass of a shared index is its own original.
			seen.Add(c.path)
			continue
		}

		dup := types.Duplicate{
			Path:     c.path,
			Original: outcome.Original,
			Hash:     c.hash,
			Size:     c.size,
		}

		if e.dryRun {
			seen.Add(c.path)
		} else {
			if err := e.deleter.Delete(c.path); err != nil {
				skip(types.ScanError{Path: c.path, Stage: "delete", Error: err.Error()})
				if errors.Is(err, fs.ErrNotExist) {
					hc.Remove(c.path)
				} else {
					seen.Add(c.path)
				}
				continue
			}
			hc.Remove(c.path)
			dup.Removed = true
			result.BytesReclaimed += c.size
		}

		dr.Duplicates++
		result.Duplicates = append(result.Duplicates, dup)
		e.reporter.DuplicateFound(dup)
	}
	return nil
}
