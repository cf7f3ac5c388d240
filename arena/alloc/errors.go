package alloc

import "errors"

var (
	// ErrOutOfMemory indicates no free block fit and the region could not grow.
	// The allocator is unchanged and remains usable.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrNegativeSize indicates a negative allocation request.
	ErrNegativeSize = errors.New("alloc: negative size")

	// ErrBadRegion indicates a region too small to hold the reserved prefix.
	ErrBadRegion = errors.New("alloc: region lacks reserved prefix")
)
