package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.BoolP("dry-run", "d", false, "")
	fs.IntP("workers", "w", DefaultWorkers, "")
	fs.Bool("rehash", false, "")
	fs.StringSliceP("exclude", "e", nil, "")
	fs.StringP("algo", "a", "", "")
	fs.StringP("output", "o", DefaultOutput, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `{"dirs_path": ["/data/photos"]}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/photos"}, cfg.DirsPath)
	assert.Equal(t, DefaultHashAlgo, cfg.HashAlgo)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.DryRun)
	assert.False(t, cfg.Rehash)
	assert.Equal(t, cache.PolicyReset, cfg.CorruptPolicy())
	assert.True(t, cfg.Manifest.Enabled)
	assert.Equal(t, DefaultRetentionDays, cfg.Manifest.RetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `{
  "dirs_path": ["/data/d1", "/data/d2/"],
  "hash_algo": "SHA256",
  "dry_run": true,
  "workers": 2,
  "exclude": ["*.tmp"],
  "cache": {"corrupt_policy": "fail"},
  "manifest": {"enabled": false, "retention_days": 7}
}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/d1", "/data/d2"}, cfg.DirsPath)
	assert.Equal(t, "sha256", cfg.HashAlgo)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{"*.tmp"}, cfg.Exclude)
	assert.Equal(t, cache.PolicyFail, cfg.CorruptPolicy())
	assert.False(t, cfg.Manifest.Enabled)
	assert.Equal(t, 7, cfg.Manifest.RetentionDays)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	_, err := Load(path, nil)
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "Configuration file not found: "+path)
}

func TestLoad_MissingFileWithDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	cfg, err := Load(path, nil, "/data/photos")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/photos"}, cfg.DirsPath)
	assert.Empty(t, cfg.File)
}

func TestLoad_DirsOverrideFile(t *testing.T) {
	path := writeConfig(t, `{"dirs_path": ["/data/d1"], "hash_algo": "sha1"}`)

	cfg, err := Load(path, nil, "/other")
	require.NoError(t, err)
	assert.Equal(t, []string{"/other"}, cfg.DirsPath)
	assert.Equal(t, "sha1", cfg.HashAlgo)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: `{"dirs_path": [`},
		{name: "no directories", content: `{"hash_algo": "md5"}`},
		{name: "empty directory", content: `{"dirs_path": [""]}`},
		{name: "unknown algorithm", content: `{"dirs_path": ["/d"], "hash_algo": "crc32"}`},
		{name: "zero workers", content: `{"dirs_path": ["/d"], "workers": 0}`},
		{name: "bad policy", content: `{"dirs_path": ["/d"], "cache": {"corrupt_policy": "ignore"}}`},
		{name: "bad exclude", content: `{"dirs_path": ["/d"], "exclude": ["[a-"]}`},
		{name: "negative retention", content: `{"dirs_path": ["/d"], "manifest": {"retention_days": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `{"dirs_path": ["/d"], "hash_algo": "md5"}`)
	t.Setenv("DUPSWEEP_HASH_ALGO", "blake3")
	t.Setenv("DUPSWEEP_WORKERS", "9")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "blake3", cfg.HashAlgo)
	assert.Equal(t, 9, cfg.Workers)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `{"dirs_path": ["/d"], "hash_algo": "md5", "workers": 3}`)

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--dry-run", "-a", "sha512", "-e", "*.bak,*.tmp"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "sha512", cfg.HashAlgo)
	assert.Equal(t, []string{"*.bak", "*.tmp"}, cfg.Exclude)
	// unchanged flags do not override the file
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, `{"dirs_path": ["~/photos"], "manifest": {"path": "~/history"}}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "photos"), cfg.DirsPath[0])
	assert.Equal(t, filepath.Join(home, "history"), cfg.ManifestDir())
}

func TestManifestDir_Default(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultManifestDir(), cfg.ManifestDir())
	assert.Equal(t, "manifest", filepath.Base(DefaultManifestDir()))
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	created, err := WriteDefault(path, "/data/photos")
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/photos"}, cfg.DirsPath)
	assert.Equal(t, DefaultHashAlgo, cfg.HashAlgo)

	created, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), got)

	got, err = ExpandPath("/abs/x")
	require.NoError(t, err)
	assert.Equal(t, "/abs/x", got)
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, cfg.DirsPath)
	assert.Equal(t, DefaultHashAlgo, cfg.HashAlgo)
	assert.Empty(t, cfg.File)

	path := writeConfig(t, `{"dirs_path": ["/d"], "manifest": {"retention_days": 3}}`)
	cfg, err = LoadOptional(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Manifest.RetentionDays)

	_, err = LoadOptional(writeConfig(t, `{"dirs_path": ["/d"], "hash_algo": "crc32"}`))
	assert.ErrorIs(t, err, ErrConfig)

	_, err = LoadOptional(writeConfig(t, `{`))
	assert.ErrorIs(t, err, ErrConfig)
}
