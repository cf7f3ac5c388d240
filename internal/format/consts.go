// Package format describes the in-region layout of block headers: the unit
// size every block is measured in, the byte offsets of the header fields, and
// the alignment helpers used to turn byte counts into units. Higher-level
// packages read and write headers exclusively through these helpers.
package format

const (
	// UnitSize is the size of one block header in bytes. Block sizes are
	// counted in units of this size, and every block starts on a unit
	// boundary, so headers are self-aligning.
	//
	// Layout (little-endian):
	//   0x00  next  uint64  byte offset of the next free block's header
	//   0x08  size  uint64  block length in units, header included
	UnitSize = 16

	// UnitMask is the bitmask used for aligning to unit boundaries (UnitSize - 1).
	UnitMask = UnitSize - 1

	// NextOffset is the offset of the next-link field inside a header.
	NextOffset = 0x00

	// SizeOffset is the offset of the size field inside a header.
	SizeOffset = 0x08

	// ReservedSize is the number of bytes at the start of every region that
	// are never handed out by growth. The allocator keeps its sentinel header
	// there, which also makes offset 0 usable as a nil pointer.
	ReservedSize = UnitSize

	// PageSize is the granularity used when committing reserved memory.
	PageSize = 0x1000

	// PageMask is the bitmask used for aligning to page boundaries (PageSize - 1).
	PageMask = PageSize - 1
)
