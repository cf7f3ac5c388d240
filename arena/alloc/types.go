package alloc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/umalloc/internal/format"
)

// Ptr is the region offset of a block's payload. It is what callers hold
// between Alloc and Free.
type Ptr uint64

// Nil is the zero Ptr. It is never returned by a successful Alloc because
// offset 0 lies inside the region's reserved prefix.
const Nil Ptr = 0

// String formats the pointer as a hexadecimal offset.
func (p Ptr) String() string { return fmt.Sprintf("0x%x", uint64(p)) }

const (
	// Unit is the allocation granularity in bytes, equal to one header.
	Unit = format.UnitSize

	// DefaultMinGrowUnits is the default growth floor (64 KiB).
	DefaultMinGrowUnits = 4096

	// maxUnits bounds any single block so that its byte size fits in an int.
	maxUnits = uint64(math.MaxInt) / format.UnitSize
)

// MaxRequest is the largest payload Alloc will attempt to satisfy.
const MaxRequest = int(maxUnits-1) * format.UnitSize

// Config controls allocator behavior.
type Config struct {
	// MinGrowUnits is the minimum number of units requested from the region
	// whenever the free list has no fit. Zero selects DefaultMinGrowUnits.
	MinGrowUnits uint64

	// Logger receives grow and out-of-memory events. Nil selects a logger
	// that writes to stderr when UMALLOC_LOG_ALLOC is set and discards otherwise.
	Logger *slog.Logger
}

// DefaultConfig is used when New is given a nil config.
var DefaultConfig = Config{MinGrowUnits: DefaultMinGrowUnits}

// Stats holds allocator counters and unit accounting.
type Stats struct {
	AllocCalls       int // Total Alloc() calls
	FreeCalls        int // Free() calls with a non-nil pointer
	ExactFits        int // Allocations that unlinked a block of exactly the right size
	Splits           int // Allocations carved from the tail of a larger block
	CoalesceForward  int // Releases that absorbed the following free block
	CoalesceBackward int // Releases absorbed into the preceding free block
	GrowCalls        int // Successful region extensions
	GrowBytes        int64
	OutOfMemory      int // Alloc() calls that failed

	FreeUnits   uint64 // Units currently on the free list
	InUseUnits  uint64 // Units currently handed out, headers included
	RegionBytes int    // Current region size, reserved prefix included
}

// ManagedUnits returns the number of units acquired from the region.
func (s Stats) ManagedUnits() uint64 {
	return uint64(s.RegionBytes-format.ReservedSize) / format.UnitSize
}
