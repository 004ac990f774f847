package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
)

func TestLog_WritesEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.log")
	require.NoError(t, logging.Init(logging.Config{Level: "debug", Path: path}))

	r := NewLog("report-test")
	r.DirectoryStarted("/d1", 0, 2)
	r.FileProcessed(types.Progress{Root: "/d1", Path: "/d1/a", Seq: 1, Total: 1})
	r.DuplicateFound(types.Duplicate{Path: "/d1/b", Original: "/d1/a", Size: 2048, Removed: true})
	r.DuplicateFound(types.Duplicate{Path: "/d1/c", Original: "/d1/a", Size: 10})
	r.DirectoryFinished(types.DirectoryResult{Root: "/d1", Files: 3, Elapsed: time.Second})

	require.NoError(t, logging.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "processing directory")
	assert.Contains(t, content, "processing file")
	assert.Contains(t, content, "duplicate removed")
	assert.Contains(t, content, "duplicate found")
	assert.Contains(t, content, "2.0 KiB")
	assert.Contains(t, content, "directory done")
}
