package arena

import (
	"errors"
	"fmt"

	"github.com/joshuapare/umalloc/internal/format"
)

var (
	// ErrExhausted indicates the region cannot be extended by the requested amount.
	ErrExhausted = errors.New("arena: region exhausted")

	// ErrClosed indicates the region has been released.
	ErrClosed = errors.New("arena: region closed")

	// ErrBadExtend indicates an extension that is not a positive multiple of format.UnitSize.
	ErrBadExtend = errors.New("arena: extend size must be a positive multiple of the unit size")
)

// Region is a contiguous, upward-growing span of raw memory.
//
// Contract:
//   - Extend(n) grows the region by exactly n bytes and returns the offset at
//     which the new span starts, which is always the previous Len().
//   - A failed Extend leaves the region unchanged.
//   - Bytes() returns [0, Len()); the backing array never moves.
//   - Offsets below format.ReservedSize are never returned by Extend.
type Region interface {
	// Extend grows the region by n bytes. n must be a positive multiple of
	// format.UnitSize.
	Extend(n int) (int, error)

	// Bytes returns the committed part of the region.
	Bytes() []byte

	// Len returns the current size of the region, reserved prefix included.
	Len() int
}

// checkExtend validates an extension request against the region's current
// break and capacity, returning the new break.
func checkExtend(brk, n, capacity int) (int, error) {
	if n <= 0 || n%format.UnitSize != 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadExtend, n)
	}
	if n > capacity-brk {
		return 0, fmt.Errorf("%w: need %d bytes, %d available", ErrExhausted, n, capacity-brk)
	}
	return brk + n, nil
}
