package alloc

// Allocator defines the interface for block allocation and release.
//
// Implementations:
//   - NextFit: free-list allocator, single goroutine
//   - Synced: NextFit guarded by one mutex
type Allocator interface {
	// Alloc allocates a block with at least n payload bytes.
	// Returns the payload pointer, a slice of length n over the payload, and
	// any error. The slice's capacity is the full usable size of the block.
	Alloc(n int) (Ptr, []byte, error)

	// Free returns a block obtained from Alloc. See the package documentation
	// for the unchecked precondition.
	Free(p Ptr)

	// Payload returns the full usable bytes of a live block.
	Payload(p Ptr) []byte

	// Stats returns a snapshot of allocator counters.
	Stats() Stats
}

var (
	_ Allocator = (*NextFit)(nil)
	_ Allocator = (*Synced)(nil)
)
