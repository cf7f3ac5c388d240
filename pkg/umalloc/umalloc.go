// Package umalloc provides a process-wide allocator instance.
//
// The instance is created on first use over a virtual memory reservation
// sized to the host (see arena.DefaultReserve). If the reservation cannot be
// made, a Go-heap region of FallbackLimit bytes is used instead. All functions
// are safe for concurrent use.
//
// Example:
//
//	p, buf, err := umalloc.Malloc(128)
//	if err != nil {
//		return err
//	}
//	copy(buf, data)
//	defer umalloc.Free(p)
package umalloc

import (
	"log/slog"
	"sync"

	"github.com/joshuapare/umalloc/arena"
	"github.com/joshuapare/umalloc/arena/alloc"
)

// FallbackLimit is the capacity of the Go-heap region used when virtual
// memory cannot be reserved (64 MiB).
const FallbackLimit = 64 << 20

var (
	once     sync.Once
	instance alloc.Allocator
)

// Default returns the process-wide allocator, creating it on first call.
func Default() alloc.Allocator {
	once.Do(func() {
		instance = newDefault()
	})
	return instance
}

func newDefault() alloc.Allocator {
	var r arena.Region
	if m, err := arena.NewMapped(arena.DefaultReserve()); err == nil {
		r = m
	} else {
		slog.Default().Warn("umalloc: falling back to heap region", "error", err, "limit", FallbackLimit)
		r = arena.NewMem(FallbackLimit)
	}

	a, err := alloc.New(r, nil)
	if err != nil {
		// Both region kinds always carry the reserved prefix.
		panic(err)
	}
	return alloc.NewSynced(a)
}

// Malloc allocates at least n bytes from the process-wide allocator.
func Malloc(n int) (alloc.Ptr, []byte, error) { return Default().Alloc(n) }

// Free releases a block obtained from Malloc. Free(alloc.Nil) does nothing.
func Free(p alloc.Ptr) { Default().Free(p) }

// Payload returns the full usable bytes of a live block.
func Payload(p alloc.Ptr) []byte { return Default().Payload(p) }

// Stats returns a snapshot of the process-wide allocator's counters.
func Stats() alloc.Stats { return Default().Stats() }
