// Package arena provides the growable memory regions an allocator carves
// blocks from.
//
// A Region behaves like a program break: it starts with a small reserved
// prefix and can only be extended upward, one contiguous span at a time. The
// backing memory of a region never moves, so slices handed out from Bytes()
// stay valid for the lifetime of the region.
//
// # Implementations
//
// Mem: fixed-capacity region backed by Go memory.
//
//   - Capacity chosen at construction
//   - Base address aligned to format.UnitSize
//   - Useful for tests and bounded heaps
//
// Mapped: region backed by reserved virtual memory.
//
//   - Reserves address space once (anonymous PROT_NONE mapping on unix)
//   - Commits pages in place as the region grows
//   - DefaultReserve caps the reservation at the host's physical memory
//
// Failing: region whose growth always fails, for out-of-memory paths.
//
// # Reserved Prefix
//
// The first format.ReservedSize bytes of every region are part of Bytes()
// from the start and are never returned by Extend. Offset 0 therefore never
// addresses a grown span, and consumers may keep their own bookkeeping there.
//
// # Thread Safety
//
// Regions are not thread-safe. They are owned by a single allocator, which in
// turn is synchronized by its caller.
package arena
