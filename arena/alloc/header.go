package alloc

import "github.com/joshuapare/umalloc/internal/format"

// Header access.
//
// Block headers are addressed by their byte offset in the region. This file
// is the only place that turns offsets into header fields or converts between
// header offsets and caller-visible pointers; nothing outside the package ever
// sees a header offset.

// headerOf recovers the header offset of the block whose payload is p.
//
// Precondition: p was returned by Alloc on this allocator and has not been
// freed since. This is not checked. A violation corrupts the free list.
func headerOf(p Ptr) uint64 {
	return uint64(p) - format.UnitSize
}

// payloadOf returns the pointer handed to callers for the block at bp.
func payloadOf(bp uint64) Ptr {
	return Ptr(bp + format.UnitSize)
}

// end returns the offset just past the block at bp.
func (a *NextFit) end(bp uint64) uint64 {
	return bp + format.UnitBytes(a.size(bp))
}

func (a *NextFit) next(bp uint64) uint64 {
	return format.ReadU64(a.data, bp+format.NextOffset)
}

func (a *NextFit) setNext(bp, next uint64) {
	format.PutU64(a.data, bp+format.NextOffset, next)
}

func (a *NextFit) size(bp uint64) uint64 {
	return format.ReadU64(a.data, bp+format.SizeOffset)
}

func (a *NextFit) setSize(bp, units uint64) {
	format.PutU64(a.data, bp+format.SizeOffset, units)
}
