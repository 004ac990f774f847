package engine

import (
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/cache"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/index"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/report"
)

// DefaultWorkers is the number of files hashed concurrently when WithWorkers
// is not given.
const DefaultWorkers = 4

// Option configures an Engine.
type Option func(*Engine)

// WithReporter sets the receiver of scan events.
func WithReporter(r report.Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithDeleter replaces the function used to remove duplicates.
func WithDeleter(d Deleter) Option {
	return func(e *Engine) {
		if d != nil {
			e.deleter = d
		}
	}
}

// WithDryRun reports duplicates without deleting them.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithWorkers sets how many cache misses are hashed concurrently.
// Values below 1 select DefaultWorkers.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = DefaultWorkers
		}
		e.workers = n
	}
}

// WithRehash ignores cached hashes and recomputes every file.
func WithRehash(rehash bool) Option {
	return func(e *Engine) {
		e.rehash = rehash
	}
}

// WithCorruptCachePolicy selects what happens when a results.json is malformed.
func WithCorruptCachePolicy(p cache.CorruptPolicy) Option {
	return func(e *Engine) {
		e.corruptPolicy = p
	}
}

// WithIndex shares a duplicate index with the engine, so first-seen files
// from an earlier run still count as originals.
func WithIndex(x *index.Index) Option {
	return func(e *Engine) {
		e.index = x
	}
}

// WithExclude skips files and directories matching any of the glob patterns.
// Patterns are matched against both the base name and the full path.
func WithExclude(patterns []string) Option {
	return func(e *Engine) {
		e.exclude = append([]string(nil), patterns...)
	}
}
