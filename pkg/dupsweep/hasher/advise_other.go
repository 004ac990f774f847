//go:build !linux

package hasher

import "os"

// adviseSequential is a no-op on platforms without posix_fadvise.
func adviseSequential(_ *os.File) {}
