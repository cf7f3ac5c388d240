// Package alloc implements a next-fit free-list allocator over an arena.Region.
//
// # Overview
//
// Free blocks are kept on a circular, address-ordered singly linked list whose
// links live inside the managed memory itself. Every block starts with a
// one-unit header (next link + size in units); callers only ever see the
// payload that follows it.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Alloc(n): Allocate a block with at least n payload bytes
//   - Free(p): Return a block to the free list, merging with free neighbors
//   - Payload(p): Re-derive the usable bytes of a live block
//   - Stats(): Snapshot of counters and unit accounting
//
// # Implementations
//
// NextFit: the free-list allocator
//
//   - Resumes each search where the previous operation left off
//   - Exact fits are unlinked, larger blocks are split from their tail
//   - Freed blocks coalesce with address-adjacent free neighbors
//   - Grows the region by at least Config.MinGrowUnits units when nothing fits
//
// Synced: NextFit behind a single mutex, for use from several goroutines.
//
// # Usage Example
//
//	r := arena.NewMem(1 << 20)
//	a, err := alloc.New(r, nil)
//	if err != nil {
//	    return err
//	}
//
//	p, buf, err := a.Alloc(64)
//	if err != nil {
//	    return err // errors.Is(err, alloc.ErrOutOfMemory)
//	}
//	copy(buf, payload)
//
//	a.Free(p)
//
// # Units
//
// Sizes are counted in units of format.UnitSize (16) bytes. A request for n
// bytes consumes ceil(n/16)+1 units, the extra unit holding the header, and
// every payload is 16-byte aligned.
//
// # Undefined Behavior
//
// Free trusts its argument. Passing a pointer that did not come from Alloc on
// the same allocator, or freeing twice, corrupts the free list without any
// error being reported. Free(Nil) is a no-op.
//
// # Thread Safety
//
// NextFit is not thread-safe. Wrap it in Synced, or synchronize every Alloc and
// Free externally with one lock covering the whole allocator.
package alloc
