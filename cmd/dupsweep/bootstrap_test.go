package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/manifest"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

func TestParseRotationConfig(t *testing.T) {
	defaultSize := logging.DefaultRotationConfig().MaxSize

	tests := []struct {
		name     string
		input    config.RotationConfig
		expected logging.RotationConfig
	}{
		{
			name:     "megabytes",
			input:    config.RotationConfig{MaxSize: "10MiB", MaxAge: 30, MaxBackups: 5},
			expected: logging.RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 30, MaxBackups: 5},
		},
		{
			name:     "decimal units",
			input:    config.RotationConfig{MaxSize: "1GB", MaxAge: 7, MaxBackups: 3},
			expected: logging.RotationConfig{MaxSize: 1000 * 1000 * 1000, MaxAge: 7, MaxBackups: 3},
		},
		{
			name:     "empty max_size uses default",
			input:    config.RotationConfig{MaxAge: 14, MaxBackups: 2},
			expected: logging.RotationConfig{MaxSize: defaultSize, MaxAge: 14, MaxBackups: 2},
		},
		{
			name:     "invalid max_size uses default",
			input:    config.RotationConfig{MaxSize: "invalid", MaxAge: 21, MaxBackups: 4},
			expected: logging.RotationConfig{MaxSize: defaultSize, MaxAge: 21, MaxBackups: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseRotationConfig(tt.input))
		})
	}
}

func TestConsoleLevel(t *testing.T) {
	t.Cleanup(viper.Reset)

	tests := []struct {
		name    string
		quiet   bool
		verbose bool
		want    string
	}{
		{name: "default", want: "info"},
		{name: "verbose", verbose: true, want: "debug"},
		{name: "quiet", quiet: true, want: ""},
		{name: "quiet wins", quiet: true, verbose: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Set("quiet", tt.quiet)
			viper.Set("verbose", tt.verbose)
			assert.Equal(t, tt.want, consoleLevel())
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateString(tt.input, tt.maxLen), tt.input)
	}
}

func testConfig(t *testing.T, dirs ...string) *config.Config {
	t.Helper()
	return &config.Config{
		DirsPath: dirs,
		HashAlgo: "md5",
		Workers:  2,
		Output:   "json",
		Cache:    config.CacheConfig{CorruptPolicy: "reset"},
		Manifest: config.ManifestConfig{
			Enabled:       true,
			Path:          filepath.Join(t.TempDir(), "manifest"),
			RetentionDays: config.DefaultRetentionDays,
		},
	}
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("other"), 0o644))

	cfg := testConfig(t, dir)

	var out bytes.Buffer
	result, err := sweep(context.Background(), cfg, &out)
	require.NoError(t, err)
	require.NotNil(t, result)

	var doc struct {
		Duplicates []struct {
			Path     string `json:"path"`
			Original string `json:"original"`
			Removed  bool   `json:"removed"`
		} `json:"duplicates"`
		Summary struct {
			TotalFiles int64 `json:"total_files"`
			Removed    int   `json:"removed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))

	require.Len(t, doc.Duplicates, 1)
	assert.Equal(t, filepath.Join(dir, "b.txt"), doc.Duplicates[0].Path)
	assert.Equal(t, filepath.Join(dir, "a.txt"), doc.Duplicates[0].Original)
	assert.True(t, doc.Duplicates[0].Removed)
	assert.Equal(t, int64(3), doc.Summary.TotalFiles)
	assert.Equal(t, 1, doc.Summary.Removed)

	assert.NoFileExists(t, filepath.Join(dir, "b.txt"))
	assert.FileExists(t, filepath.Join(dir, cache.FileName))
}

func TestSweep_DryRunKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("same"), 0o644))

	cfg := testConfig(t, dir)
	cfg.DryRun = true
	cfg.Output = "plain"

	var out bytes.Buffer
	result, err := sweep(context.Background(), cfg, &out)
	require.NoError(t, err)

	assert.Len(t, result.Duplicates, 1)
	assert.FileExists(t, filepath.Join(dir, "b.txt"))
	assert.Contains(t, out.String(), "would remove")
}

func TestSweep_UnknownOutput(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Output = "xml"

	result, err := sweep(context.Background(), cfg, &bytes.Buffer{})
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestSweep_MissingDirectory(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))

	var out bytes.Buffer
	_, err := sweep(context.Background(), cfg, &out)
	assert.Error(t, err)
}

func TestRecordRun(t *testing.T) {
	t.Cleanup(viper.Reset)

	result := &types.RunResult{
		Algorithm:  "md5",
		TotalFiles: 2,
		Duplicates: []types.Duplicate{
			{Path: "/d/b", Original: "/d/a", Hash: "abc", Size: 4, Removed: true},
		},
		BytesReclaimed: 4,
	}

	t.Run("records runs with duplicates", func(t *testing.T) {
		cfg := testConfig(t)
		recordRun(cfg, result)

		m, err := manifest.New(cfg.ManifestDir())
		require.NoError(t, err)
		entries, err := m.List(0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, manifest.OpDedupe, entries[0].Operation)
	})

	t.Run("skips runs without duplicates", func(t *testing.T) {
		cfg := testConfig(t)
		recordRun(cfg, &types.RunResult{Algorithm: "md5"})
		assert.NoDirExists(t, cfg.ManifestDir())
	})

	t.Run("skips when disabled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Manifest.Enabled = false
		recordRun(cfg, result)
		assert.NoDirExists(t, cfg.ManifestDir())
	})

	t.Run("skips with no-manifest flag", func(t *testing.T) {
		viper.Set("no_manifest", true)
		defer viper.Set("no_manifest", false)

		cfg := testConfig(t)
		recordRun(cfg, result)
		assert.NoDirExists(t, cfg.ManifestDir())
	})
}

func TestCacheRoots_FromArgs(t *testing.T) {
	dir := t.TempDir()

	roots, err := cacheRoots([]string{dir, filepath.Join(dir, "sub", "..")})
	require.NoError(t, err)
	assert.Equal(t, []string{dir, dir}, roots)
}

func TestListCaches(t *testing.T) {
	dir := t.TempDir()
	hc := cache.New(dir)
	hc.Update(filepath.Join(dir, "b"), "2222", 2)
	hc.Update(filepath.Join(dir, "a"), "1111", 1)
	require.NoError(t, hc.Save())

	var out bytes.Buffer
	require.NoError(t, listCaches(&out, []string{dir}))

	want := "1111  " + filepath.Join(dir, "a") + "\n" +
		"2222  " + filepath.Join(dir, "b") + "\n"
	assert.Equal(t, want, out.String())
}

func TestListCaches_CorruptCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cache.FileName), []byte("{"), 0o644))

	err := listCaches(&bytes.Buffer{}, []string{dir})
	assert.ErrorIs(t, err, cache.ErrParse)
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	runVersion(versionCmd, nil)
	assert.Contains(t, out.String(), "dupsweep dev")
}
