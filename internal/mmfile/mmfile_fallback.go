//go:build !unix

// Package mmfile provides platform-specific helpers for reserving address
// space and committing it in place, so a region can grow without its backing
// memory ever moving.
package mmfile

import "fmt"

// Reserve allocates size bytes up front when virtual memory reservation is not
// available. Callers should keep reservations modest on these platforms.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmfile: invalid reservation size %d", size)
	}
	return make([]byte, size), nil
}

// Commit is a no-op: fallback reservations are always accessible.
func Commit(b []byte) error { return nil }

// Release drops the reservation; the garbage collector reclaims it.
func Release(data []byte) error { return nil }
