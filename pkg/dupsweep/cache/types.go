package cache

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FileName is the name of the cache record kept at the top of each root directory.
const FileName = "results.json"

// tempSuffix is appended to FileName while a new record is being written.
const tempSuffix = ".tmp"

// ErrParse matches every *ParseError.
var ErrParse = errors.New("malformed cache record")

// ParseError reports a cache record that exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing cache %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Entry is the last known fingerprint of one file.
// It stays trustworthy only while the file's modification time equals Mtime.
type Entry struct {
	Hash  string  `json:"hash"`
	Mtime float64 `json:"mtime"`
}

// MtimeOf converts a modification time to float seconds since the epoch.
// The value is built as sec + nsec*1e-9 so records written by other tools
// using the same format compare equal for unchanged files.
func MtimeOf(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())*1e-9
}

// IsReserved reports whether name is a file the cache itself owns at the root
// of a scanned directory.
func IsReserved(name string) bool {
	return name == FileName || name == FileName+tempSuffix
}

// CorruptPolicy decides what happens when a root's cache record is malformed.
type CorruptPolicy string

const (
	// PolicyReset discards the malformed record and starts from an empty cache.
	PolicyReset CorruptPolicy = "reset"

	// PolicyFail aborts the run with the parse error.
	PolicyFail CorruptPolicy = "fail"
)

// ErrInvalidPolicy is returned by ParseCorruptPolicy for unknown names.
var ErrInvalidPolicy = errors.New("invalid corrupt cache policy")

// ParseCorruptPolicy parses a policy name. The empty string selects PolicyReset.
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch CorruptPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyReset, "":
		return PolicyReset, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidPolicy, s, PolicyReset, PolicyFail)
	}
}
