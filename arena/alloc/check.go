package alloc

import (
	"fmt"

	"github.com/joshuapare/umalloc/internal/format"
)

// InvariantError reports a free list that violates one of its invariants.
type InvariantError struct {
	Off    uint64 // header offset where the violation was detected
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("alloc: free list invariant violated at 0x%x: %s", e.Off, e.Reason)
}

// Check walks the free list and verifies that it is circular, strictly
// address-ordered from the sentinel, free of address-adjacent blocks, within
// the region, and consistent with the unit accounting in Stats. The walk is
// bounded, so Check terminates even on a corrupted list.
func (a *NextFit) Check() error {
	if !a.ready {
		return nil
	}
	if a.size(sentinel) != 0 {
		return &InvariantError{Off: sentinel, Reason: fmt.Sprintf("sentinel size %d, want 0", a.size(sentinel))}
	}

	limit := uint64(len(a.data))
	maxSteps := limit/format.UnitSize + 1

	var (
		prev      = sentinel
		prevEnd   uint64
		freeUnits uint64
		sawCursor = a.freep == sentinel
	)
	for steps := uint64(0); ; steps++ {
		if steps > maxSteps {
			return &InvariantError{Off: prev, Reason: "list does not return to the sentinel"}
		}
		p := a.next(prev)
		if p == sentinel {
			break
		}

		switch {
		case p%format.UnitSize != 0:
			return &InvariantError{Off: p, Reason: "block not unit aligned"}
		case p < format.ReservedSize || p >= limit:
			return &InvariantError{Off: p, Reason: fmt.Sprintf("block outside region [0x%x, 0x%x)", format.ReservedSize, limit)}
		case p <= prev:
			return &InvariantError{Off: p, Reason: fmt.Sprintf("address order broken after 0x%x", prev)}
		case prev != sentinel && prevEnd == p:
			return &InvariantError{Off: p, Reason: fmt.Sprintf("adjacent to free block 0x%x", prev)}
		case prev != sentinel && prevEnd > p:
			return &InvariantError{Off: p, Reason: fmt.Sprintf("overlaps free block 0x%x", prev)}
		}

		units := a.size(p)
		if units == 0 || units > (limit-p)/format.UnitSize {
			return &InvariantError{Off: p, Reason: fmt.Sprintf("size %d units does not fit the region", units)}
		}

		freeUnits += units
		if p == a.freep {
			sawCursor = true
		}
		prev, prevEnd = p, p+format.UnitBytes(units)
	}

	if !sawCursor {
		return &InvariantError{Off: a.freep, Reason: "cursor is not on the free list"}
	}
	if freeUnits != a.stats.FreeUnits {
		return &InvariantError{Off: sentinel, Reason: fmt.Sprintf("free units %d, accounted %d", freeUnits, a.stats.FreeUnits)}
	}
	if managed := a.Stats().ManagedUnits(); a.stats.FreeUnits+a.stats.InUseUnits != managed {
		return &InvariantError{Off: sentinel, Reason: fmt.Sprintf(
			"free %d + in use %d units != managed %d", a.stats.FreeUnits, a.stats.InUseUnits, managed)}
	}
	return nil
}
