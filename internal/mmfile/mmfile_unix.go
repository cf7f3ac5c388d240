//go:build unix

// Package mmfile provides platform-specific helpers for reserving address
// space and committing it in place, so a region can grow without its backing
// memory ever moving.
package mmfile

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Reserve maps size bytes of anonymous, inaccessible memory. No pages are
// usable until they are passed to Commit.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmfile: invalid reservation size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmfile: reserve %d bytes: %w", size, err)
	}
	return data, nil
}

// Commit makes the pages backing b readable and writable. b must begin on a
// page boundary inside a reservation.
func Commit(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("mmfile: commit %d bytes: %w", len(b), err)
	}
	return nil
}

// Release unmaps a reservation returned by Reserve.
func Release(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
