// Package hasher computes content digests of files for duplicate detection.
//
// Algorithms are selected at runtime by name:
//
//	digest, err := hasher.Hash("/data/photo.jpg", "sha256")
//	if errors.Is(err, hasher.ErrRead) {
//	    // the file vanished or became unreadable; skip it
//	}
package hasher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// ChunkSize is the number of bytes read from a file per digest update.
const ChunkSize = 64 * 1024

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "md5"

var (
	// ErrUnsupportedAlgorithm is returned for algorithm names not in the registry.
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

	// ErrRead matches every *ReadError.
	ErrRead = errors.New("read failed")
)

// ReadError reports a file that could not be opened or read to the end.
// It is expected when files change underneath a scan and callers should
// treat it as a reason to skip the file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRead.
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// Algorithm describes a digest algorithm available to the hasher.
type Algorithm struct {
	// Name is the canonical lowercase name, e.g. "sha256".
	Name string

	// Size is the digest length in bytes.
	Size int

	// NewFunc returns a fresh digest accumulator.
	NewFunc func() hash.Hash
}

// registry holds cryptographic digests only: a matching digest leads to a
// permanent delete. Names follow the hash_algo values of existing configs.
var registry = map[string]Algorithm{
	"md5":      {Name: "md5", Size: md5.Size, NewFunc: md5.New},
	"sha1":     {Name: "sha1", Size: sha1.Size, NewFunc: sha1.New},
	"sha224":   {Name: "sha224", Size: sha256.Size224, NewFunc: sha256.New224},
	"sha256":   {Name: "sha256", Size: sha256.Size, NewFunc: sha256.New},
	"sha384":   {Name: "sha384", Size: sha512.Size384, NewFunc: sha512.New384},
	"sha512":   {Name: "sha512", Size: sha512.Size, NewFunc: sha512.New},
	"sha3_224": {Name: "sha3_224", Size: 28, NewFunc: sha3.New224},
	"sha3_256": {Name: "sha3_256", Size: 32, NewFunc: sha3.New256},
	"sha3_384": {Name: "sha3_384", Size: 48, NewFunc: sha3.New384},
	"sha3_512": {Name: "sha3_512", Size: 64, NewFunc: sha3.New512},
	"blake2b":  {Name: "blake2b", Size: blake2b.Size, NewFunc: newBlake2b},
	"blake2s":  {Name: "blake2s", Size: blake2s.Size, NewFunc: newBlake2s},
	"blake3":   {Name: "blake3", Size: 32, NewFunc: func() hash.Hash { return blake3.New() }},
}

// newBlake2b returns an unkeyed BLAKE2b-512. It only fails for oversized keys.
func newBlake2b() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

// newBlake2s returns an unkeyed BLAKE2s-256.
func newBlake2s() hash.Hash {
	h, _ := blake2s.New256(nil)
	return h
}

// Lookup returns the algorithm registered under name (case-insensitive).
func Lookup(name string) (Algorithm, error) {
	algo, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return algo, nil
}

// Algorithms returns the names of all supported algorithms, sorted.
func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hash returns the lowercase hex digest of the file at path using the named
// algorithm.
func Hash(path, algorithm string) (string, error) {
	algo, err := Lookup(algorithm)
	if err != nil {
		return "", err
	}
	return algo.HashFile(path)
}

// HashFile streams the file at path through the algorithm in ChunkSize reads.
func (a Algorithm) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	adviseSequential(f)

	h := a.NewFunc()
	buf := make([]byte, ChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &ReadError{Path: path, Err: err}
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
