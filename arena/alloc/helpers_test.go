package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umalloc/arena"
	"github.com/joshuapare/umalloc/internal/format"
)

// ============================================================================
// Allocator Creation Utilities
// ============================================================================

// newTestAllocator creates an allocator over a Mem region of limit bytes.
// minGrow of 0 selects DefaultMinGrowUnits.
func newTestAllocator(t testing.TB, limit int, minGrow uint64) *NextFit {
	t.Helper()
	a, err := New(arena.NewMem(limit), &Config{MinGrowUnits: minGrow})
	require.NoError(t, err)
	return a
}

// buildFreeList creates an allocator whose region is fully grown to limit
// bytes and whose free list holds exactly blocks (which must be sorted by
// offset and non-adjacent), with the cursor parked on cursor. Everything not
// listed counts as in use.
func buildFreeList(t testing.TB, limit int, blocks []Block, cursor uint64) *NextFit {
	t.Helper()

	r := arena.NewMem(limit)
	_, err := r.Extend(limit - format.ReservedSize)
	require.NoError(t, err)

	a, err := New(r, &Config{MinGrowUnits: 1})
	require.NoError(t, err)
	a.data = r.Bytes()
	a.init()

	prev := sentinel
	var free uint64
	for _, b := range blocks {
		require.Greater(t, b.Off, prev, "blocks must be sorted")
		a.setSize(b.Off, b.Units)
		a.setNext(prev, b.Off)
		prev = b.Off
		free += b.Units
	}
	a.setNext(prev, sentinel)
	a.freep = cursor

	a.stats.FreeUnits = free
	a.stats.InUseUnits = a.Stats().ManagedUnits() - free
	require.NoError(t, a.Check(), "fixture must satisfy invariants")
	return a
}

// putInUse writes a header for an in-use block so it can be passed to Free.
func putInUse(a *NextFit, off, units uint64) Ptr {
	a.setSize(off, units)
	return payloadOf(off)
}

// setupGrowCounter installs the onGrow hook and returns the number of grows
// plus the units added by each.
func setupGrowCounter(a *NextFit) (*int, *[]uint64) {
	count := 0
	var units []uint64
	a.onGrow = func(nu uint64) {
		count++
		units = append(units, nu)
	}
	return &count, &units
}

// assertInvariants fails the test if the free list is inconsistent or the
// unit accounting does not cover the managed region.
func assertInvariants(t testing.TB, a *NextFit) {
	t.Helper()
	require.NoError(t, a.Check())
}

// liveUnits sums the header sizes of live allocations.
func liveUnits(a *NextFit, live []Ptr) uint64 {
	var total uint64
	for _, p := range live {
		total += a.size(headerOf(p))
	}
	return total
}

// freeUnits sums the free list independently of the allocator's counters.
func freeUnits(a *NextFit) uint64 {
	var total uint64
	a.Walk(func(b Block) bool {
		total += b.Units
		return true
	})
	return total
}
