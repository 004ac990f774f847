package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

func sampleResult() *types.RunResult {
	return &types.RunResult{
		Algorithm: "md5",
		Directories: []types.DirectoryResult{
			{Root: "/data/d1", Files: 3, Hashed: 3, CacheSize: 2, Elapsed: 20 * time.Millisecond},
		},
		Duplicates: []types.Duplicate{
			{Path: "/data/d1/b", Original: "/data/d1/a", Hash: "5d41402abc4b2a76b9719d911017c592", Size: 2048, Removed: true},
		},
		TotalFiles:     3,
		HashedFiles:    3,
		BytesReclaimed: 2048,
		Elapsed:        1500 * time.Millisecond,
		Errors: []types.ScanError{
			{Path: "/data/d1/gone", Stage: "hash", Error: "no such file or directory"},
		},
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b", func() Formatter { return &PlainFormatter{} })
	r.Register("a", func() Formatter { return &JSONFormatter{} })

	assert.Equal(t, []string{"a", "b"}, r.Available())

	f, err := r.Get("a")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestDefaultRegistry_HasBuiltins(t *testing.T) {
	available := Available()
	for _, name := range []string{"json", "jsonl", "null", "paths", "plain", "pretty", "yaml"} {
		assert.Contains(t, available, name)
	}
}

func TestPrettyFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "/data/d1")
	assert.Contains(t, out, "/data/d1/b")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "md5")
	assert.Contains(t, out, "Reclaimed:")
	assert.Contains(t, out, "/data/d1/gone")
}

func TestPrettyFormatter_DryRunAndEmpty(t *testing.T) {
	r := &types.RunResult{Algorithm: "sha256", DryRun: true}

	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "dry-run")
	assert.Contains(t, out, "No duplicates found")
	assert.Contains(t, out, "Reclaimable:")
}

func TestPlainFormatter_Format(t *testing.T) {
	r := sampleResult()
	r.Duplicates = append(r.Duplicates, types.Duplicate{Path: "/data/d1/c", Original: "/data/d1/a", Size: 10})

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, r))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "SIZE"))
	assert.Contains(t, lines[1], "removed")
	assert.Contains(t, lines[1], "/data/d1/b")
	assert.Contains(t, lines[2], "kept")
}

func TestPlainFormatter_DryRunStatus(t *testing.T) {
	r := sampleResult()
	r.DryRun = true
	r.Duplicates[0].Removed = false

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, r))
	assert.Contains(t, buf.String(), "would remove")
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleResult()))

	var decoded jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Duplicates, 1)
	assert.Equal(t, "/data/d1/a", decoded.Duplicates[0].Original)
	assert.Equal(t, "2.0 KiB", decoded.Duplicates[0].SizeHuman)
	assert.Equal(t, 1, decoded.Summary.Removed)
	assert.Equal(t, int64(2048), decoded.Summary.BytesReclaimed)
	assert.Equal(t, "1.5s", decoded.Summary.Duration)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "hash", decoded.Errors[0].Stage)
}

func TestJSONLFormatter_Format(t *testing.T) {
	r := sampleResult()
	r.Duplicates = append(r.Duplicates, types.Duplicate{Path: "/data/d1/c", Original: "/data/d1/a"})

	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Format(&buf, r))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var second jsonDuplicate
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "/data/d1/c", second.Path)
	assert.False(t, second.Removed)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleResult()))

	var decoded yamlOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "md5", decoded.Summary.Algorithm)
	assert.Equal(t, []string{"/data/d1"}, decoded.Summary.Directories)
	assert.Equal(t, "2.0 KiB", decoded.Summary.Reclaimed)
	require.Len(t, decoded.Duplicates, 1)
	assert.Equal(t, "/data/d1/b", decoded.Duplicates[0].Path)
}

func TestPathsFormatter_Format(t *testing.T) {
	r := sampleResult()
	r.Duplicates = append(r.Duplicates, types.Duplicate{Path: "/data/d1/with space", Original: "/data/d1/a"})

	var buf bytes.Buffer
	require.NoError(t, (&PathsFormatter{}).Format(&buf, r))
	assert.Equal(t, "/data/d1/b\n/data/d1/with space\n", buf.String())

	buf.Reset()
	require.NoError(t, (&NullFormatter{}).Format(&buf, r))
	assert.Equal(t, "/data/d1/b\x00/data/d1/with space\x00", buf.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		sec  float64
		want string
	}{
		{sec: 0.25, want: "250ms"},
		{sec: 2.5, want: "2.5s"},
		{sec: 125, want: "2m 5s"},
		{sec: 7260, want: "2h 1m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.sec))
	}
}
