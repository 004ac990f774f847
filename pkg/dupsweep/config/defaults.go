// Package config loads and validates dupsweep's JSON configuration.
package config

// Default configuration values for dupsweep.
const (
	// DefaultConfigPath is the configuration file read when --config is not given.
	DefaultConfigPath = "config.json"

	// DefaultHashAlgo is the digest algorithm used when hash_algo is not set.
	DefaultHashAlgo = "md5"

	// DefaultWorkers is the number of files hashed concurrently.
	DefaultWorkers = 4

	// DefaultCorruptPolicy applies when a results.json cannot be parsed.
	DefaultCorruptPolicy = "reset"

	// DefaultOutput is the formatter used for the run summary.
	DefaultOutput = "pretty"

	// DefaultRetentionDays is the number of days manifest records are kept.
	DefaultRetentionDays = 30
)
