package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
)

// ErrConfig matches every configuration failure: a missing or unreadable
// file, malformed JSON, or values that fail validation.
var ErrConfig = errors.New("configuration error")

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// ManifestConfig configures the run history.
type ManifestConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// CacheConfig configures handling of the per-directory results.json.
type CacheConfig struct {
	CorruptPolicy string `mapstructure:"corrupt_policy"`
}

// Config represents the application configuration.
type Config struct {
	DirsPath []string       `mapstructure:"dirs_path"`
	HashAlgo string         `mapstructure:"hash_algo"`
	DryRun   bool           `mapstructure:"dry_run"`
	Rehash   bool           `mapstructure:"rehash"`
	Workers  int            `mapstructure:"workers"`
	Exclude  []string       `mapstructure:"exclude"`
	Output   string         `mapstructure:"output"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Manifest ManifestConfig `mapstructure:"manifest"`

	// File is the configuration file that was read, empty if none.
	File string `mapstructure:"-"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"algo":    "hash_algo",
	"dry-run": "dry_run",
	"rehash":  "rehash",
	"workers": "workers",
	"exclude": "exclude",
	"output":  "output",
}

// Load reads the JSON configuration file at path and returns the validated
// configuration.
//
// Values are resolved in order of precedence: changed flags from flags (may
// be nil), DUPSWEEP_* environment variables (e.g. DUPSWEEP_HASH_ALGO), the
// file, then defaults. When dirs is non-empty it replaces dirs_path and the
// file becomes optional; otherwise a missing file is an error.
func Load(path string, flags *pflag.FlagSet, dirs ...string) (*Config, error) {
	cfg, err := load(path, flags, dirs, len(dirs) == 0)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional is like Load but tolerates a missing file and an empty
// dirs_path, for commands that only need logging, cache or history settings.
func LoadOptional(path string) (*Config, error) {
	cfg, err := load(path, nil, nil, false)
	if err != nil {
		return nil, err
	}
	if len(cfg.DirsPath) == 0 {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string, flags *pflag.FlagSet, dirs []string, requireFile bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("DUPSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("%w: binding flag %s: %v", ErrConfig, name, err)
				}
			}
		}
	}

	file := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
		}
		file = path
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	} else if requireFile {
		return nil, fmt.Errorf("%w: Configuration file not found: %s", ErrConfig, path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrConfig, path, err)
	}
	cfg.File = file

	if len(dirs) > 0 {
		cfg.DirsPath = append([]string(nil), dirs...)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dirs_path", []string{})
	v.SetDefault("hash_algo", DefaultHashAlgo)
	v.SetDefault("dry_run", false)
	v.SetDefault("rehash", false)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("exclude", []string{})
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("cache.corrupt_policy", DefaultCorruptPolicy)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "5MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.components", map[string]string{})

	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.path", "")
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)
}

// normalize expands ~ and cleans directory paths, and lowercases the algorithm name.
func (c *Config) normalize() error {
	for i, dir := range c.DirsPath {
		expanded, err := ExpandPath(strings.TrimSpace(dir))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		if expanded != "" {
			expanded = filepath.Clean(expanded)
		}
		c.DirsPath[i] = expanded
	}

	var err error
	if c.Manifest.Path, err = ExpandPath(c.Manifest.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if c.Logging.Path, err = ExpandPath(c.Logging.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	c.HashAlgo = strings.ToLower(strings.TrimSpace(c.HashAlgo))
	return nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if len(c.DirsPath) == 0 {
		return fmt.Errorf("%w: dirs_path must list at least one directory", ErrConfig)
	}
	for _, dir := range c.DirsPath {
		if dir == "" {
			return fmt.Errorf("%w: dirs_path contains an empty entry", ErrConfig)
		}
	}
	if _, err := hasher.Lookup(c.HashAlgo); err != nil {
		return fmt.Errorf("%w: hash_algo: %v (supported: %s)",
			ErrConfig, err, strings.Join(hasher.Algorithms(), ", "))
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrConfig, c.Workers)
	}
	if _, err := cache.ParseCorruptPolicy(c.Cache.CorruptPolicy); err != nil {
		return fmt.Errorf("%w: cache.corrupt_policy: %v", ErrConfig, err)
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: exclude pattern %q: %v", ErrConfig, pattern, err)
		}
	}
	if c.Manifest.RetentionDays < 0 {
		return fmt.Errorf("%w: manifest.retention_days must not be negative", ErrConfig)
	}
	return nil
}

// CorruptPolicy returns the parsed cache.corrupt_policy setting.
func (c *Config) CorruptPolicy() cache.CorruptPolicy {
	policy, err := cache.ParseCorruptPolicy(c.Cache.CorruptPolicy)
	if err != nil {
		return cache.PolicyReset
	}
	return policy
}

// ManifestDir returns the configured manifest directory, or the XDG default.
func (c *Config) ManifestDir() string {
	if c.Manifest.Path != "" {
		return c.Manifest.Path
	}
	return DefaultManifestDir()
}

// StateDir returns $XDG_STATE_HOME/dupsweep/ for logs and run history.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "dupsweep")
}

// DefaultManifestDir returns $XDG_STATE_HOME/dupsweep/manifest.
func DefaultManifestDir() string {
	return filepath.Join(StateDir(), "manifest")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a starter configuration to path. An existing file is
// left untouched and reported through the returned bool.
func WriteDefault(path string, dirs ...string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if len(dirs) == 0 {
		dirs = []string{"~/Pictures"}
	}
	quoted := make([]string, len(dirs))
	for i, d := range dirs {
		quoted[i] = fmt.Sprintf("%q", d)
	}

	content := fmt.Sprintf(`{
  "dirs_path": [%s],
  "hash_algo": %q,
  "dry_run": false,
  "rehash": false,
  "workers": %d,
  "exclude": [],
  "output": %q,
  "cache": {
    "corrupt_policy": %q
  },
  "logging": {
    "level": "info",
    "path": "",
    "rotation": {
      "max_size": "5MB",
      "max_age": 30,
      "max_backups": 3
    }
  },
  "manifest": {
    "enabled": true,
    "path": "",
    "retention_days": %d
  }
}
`, strings.Join(quoted, ", "), DefaultHashAlgo, DefaultWorkers, DefaultOutput,
		DefaultCorruptPolicy, DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}
