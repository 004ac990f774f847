package engine

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

// discovery is the outcome of walking one root directory.
type discovery struct {
	files  []string
	errors []types.ScanError
}

// discover lists the regular files below root in traversal order.
// Symlinks are neither followed nor returned, and the root's own cache
// record is left out.
func discover(ctx context.Context, root string, exclude []string) (*discovery, error) {
	conf := fastwalk.Config{
		Follow: false,
	}

	var (
		mu  sync.Mutex
		out discovery
	)

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			mu.Lock()
			out.errors = append(out.errors, types.ScanError{Path: path, Stage: "walk", Error: err.Error()})
			mu.Unlock()
			if d != nil && d.IsDir() && path != root {
				return fastwalk.SkipDir
			}
			return nil
		}

		if path != root && isExcluded(path, exclude) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if filepath.Dir(path) == root && cache.IsReserved(d.Name()) {
			return nil
		}

		mu.Lock()
		out.files = append(out.files, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return &out, err
	}

	sortTraversal(root, out.files)
	sort.Slice(out.errors, func(i, j int) bool { return out.errors[i].Path < out.errors[j].Path })
	return &out, nil
}

// sortTraversal orders paths directory by directory: the files of a
// directory, by name, come before the files of its subdirectories, which
// follow in name order.
func sortTraversal(root string, paths []string) {
	parts := make(map[string][]string, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		parts[p] = strings.Split(rel, string(filepath.Separator))
	}
	sort.Slice(paths, func(i, j int) bool {
		return traversalLess(parts[paths[i]], parts[paths[j]])
	})
}

func traversalLess(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		aFile, bFile := i == len(a)-1, i == len(b)-1
		if aFile != bFile {
			return aFile
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func isExcluded(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}
