package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

func TestSortTraversal(t *testing.T) {
	root := "/r"
	paths := []string{
		"/r/a/c/d.txt",
		"/r/z.txt",
		"/r/a/b.txt",
		"/r/b.txt",
		"/r/ab/x.txt",
		"/r/a/a.txt",
	}

	sortTraversal(root, paths)

	assert.Equal(t, []string{
		"/r/b.txt",
		"/r/z.txt",
		"/r/a/a.txt",
		"/r/a/b.txt",
		"/r/a/c/d.txt",
		"/r/ab/x.txt",
	}, paths)
}

func TestDiscover(t *testing.T) {
	d := t.TempDir()
	writeFile(t, filepath.Join(d, "b.txt"), "1")
	writeFile(t, filepath.Join(d, "a", "x.txt"), "2")
	writeFile(t, filepath.Join(d, cache.FileName), "{}")
	writeFile(t, filepath.Join(d, cache.FileName+".tmp"), "{}")
	writeFile(t, filepath.Join(d, "node_modules", "y.txt"), "3")

	found, err := discover(context.Background(), d, []string{"node_modules"})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(d, "b.txt"), filepath.Join(d, "a", "x.txt")}, found.files)
	assert.Empty(t, found.errors)
}

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{path: "/r/a.tmp", patterns: []string{"*.tmp"}, want: true},
		{path: "/r/a.txt", patterns: []string{"*.tmp"}, want: false},
		{path: "/r/.git", patterns: []string{".git"}, want: true},
		{path: "/r/sub/a.txt", patterns: []string{"/r/sub/*"}, want: true},
		{path: "/r/a.txt", patterns: []string{""}, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isExcluded(tt.path, tt.patterns), tt.path)
	}
}

// A file that disappears after discovery is skipped and not counted.
func TestVanishedFiles(t *testing.T) {
	d := t.TempDir()
	keep, goneBeforeStat, goneBeforeHash := filepath.Join(d, "a"), filepath.Join(d, "b"), filepath.Join(d, "c")
	for _, p := range []string{keep, goneBeforeStat, goneBeforeHash} {
		writeFile(t, p, p)
	}

	rep := &recordingReporter{}
	e := New(WithReporter(rep))
	algo, err := hasher.Lookup("md5")
	require.NoError(t, err)

	hc := cache.New(d)
	dr := &types.DirectoryResult{Root: d}
	result := &types.RunResult{}
	var skipped []types.ScanError
	skip := func(se types.ScanError) { skipped = append(skipped, se) }

	require.NoError(t, os.Remove(goneBeforeStat))
	candidates := e.statAll([]string{goneBeforeStat, keep, goneBeforeHash}, hc, dr, skip)
	require.Len(t, candidates, 2)

	require.NoError(t, os.Remove(goneBeforeHash))
	require.NoError(t, e.hashMisses(context.Background(), algo, candidates))
	assert.ErrorIs(t, candidates[1].err, hasher.ErrRead)

	seen := mapset.NewThreadUnsafeSet[string]()
	require.NoError(t, e.classify(context.Background(), candidates, hc, dr, result, seen, skip))

	assert.Equal(t, int64(3), dr.Files)
	assert.Equal(t, int64(1), e.hashedFiles.Load())
	assert.Equal(t, int64(3), e.totalFiles.Load())
	require.Len(t, rep.processed, 1)
	assert.Equal(t, types.Progress{Root: d, Path: keep, Seq: 1, Total: 2}, rep.processed[0])
	assert.Equal(t, []string{keep}, hc.Paths())
	require.Len(t, skipped, 2)
	assert.Equal(t, "stat", skipped[0].Stage)
	assert.Equal(t, "hash", skipped[1].Stage)
	assert.Empty(t, result.Duplicates)
	assert.ElementsMatch(t, []string{keep}, seen.ToSlice())
}
