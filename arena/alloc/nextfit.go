package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/umalloc/arena"
	"github.com/joshuapare/umalloc/internal/buf"
	"github.com/joshuapare/umalloc/internal/format"
)

// NextFit is a free-list allocator with a roving search cursor.
//
// Free blocks form a circular list ordered by address and anchored by a
// zero-size sentinel in the region's reserved prefix. Alloc scans from the
// cursor, Free reinserts and coalesces, and the region is extended only when
// a full lap finds nothing large enough.
type NextFit struct {
	r    arena.Region
	data []byte // r.Bytes(), refreshed after every Extend

	freep uint64 // search cursor: header offset of a free block
	ready bool   // false until the first Alloc links the sentinel

	minGrow uint64
	log     *slog.Logger

	stats Stats

	// Test hook: called after every successful grow with the units added (nil in production)
	onGrow func(units uint64)
}

// New creates an allocator over r.
//
// Parameters:
//   - r: The region to allocate from; the allocator must be its only user
//   - cfg: Allocator configuration (use nil for DefaultConfig)
func New(r arena.Region, cfg *Config) (*NextFit, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	data := r.Bytes()
	if len(data) < format.ReservedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadRegion, len(data))
	}

	minGrow := cfg.MinGrowUnits
	if minGrow == 0 {
		minGrow = DefaultMinGrowUnits
	}
	minGrow = min(minGrow, maxUnits)

	logger := cfg.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	return &NextFit{
		r:       r,
		data:    data,
		minGrow: minGrow,
		log:     logger,
	}, nil
}

// Alloc allocates a block with at least n payload bytes.
//
// The search starts just past the cursor and walks the circular list once.
// A block of exactly the needed size is unlinked; a larger block gives up its
// tail so the remainder keeps its position on the list. If the walk returns
// to the cursor without a fit, the region is grown and the search continues.
func (a *NextFit) Alloc(n int) (Ptr, []byte, error) {
	a.stats.AllocCalls++

	if n < 0 {
		return Nil, nil, ErrNegativeSize
	}
	if n > MaxRequest {
		a.stats.OutOfMemory++
		return Nil, nil, fmt.Errorf("%w: request of %d bytes exceeds %d", ErrOutOfMemory, n, MaxRequest)
	}
	nunits := format.Units(uint64(n))

	if !a.ready {
		a.init()
	}

	prev := a.freep
	for p := a.next(prev); ; prev, p = p, a.next(p) {
		if size := a.size(p); size >= nunits {
			if size == nunits {
				a.setNext(prev, a.next(p))
				a.stats.ExactFits++
			} else {
				size -= nunits
				a.setSize(p, size)
				p += format.UnitBytes(size)
				a.setSize(p, nunits)
				a.stats.Splits++
			}
			a.freep = prev
			a.stats.FreeUnits -= nunits
			a.stats.InUseUnits += nunits

			ptr := payloadOf(p)
			return ptr, a.payload(ptr, n, nunits), nil
		}

		if p == a.freep {
			var err error
			if p, err = a.morecore(nunits); err != nil {
				a.stats.OutOfMemory++
				return Nil, nil, err
			}
		}
	}
}

// Free returns the block at p to the free list, merging it with any free
// block immediately before or after it. Free(Nil) does nothing.
//
// p must have been returned by Alloc on this allocator and not freed since;
// this is not checked.
func (a *NextFit) Free(p Ptr) {
	if p == Nil {
		return
	}
	a.stats.FreeCalls++

	bp := headerOf(p)
	a.stats.InUseUnits -= a.size(bp)
	a.release(bp)
}

// Payload returns the full usable bytes of the live block at p.
func (a *NextFit) Payload(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	units := a.size(headerOf(p))
	return a.payload(p, int(format.UnitBytes(units-1)), units)
}

// payload slices n bytes at p, capped at the block's usable size.
func (a *NextFit) payload(p Ptr, n int, units uint64) []byte {
	usable := int(format.UnitBytes(units - 1))
	b, ok := buf.Slice(a.data, int(p), usable)
	if !ok {
		// Block lies outside the region: the caller broke Free's precondition.
		panic(fmt.Sprintf("alloc: block %s (%d units) outside region of %d bytes", p, units, len(a.data)))
	}
	return b[:n:usable]
}

// morecore extends the region by at least nunits units (never less than the
// configured floor) and releases the new span into the free list. It returns
// the cursor so Alloc can resume its walk from there.
//
// On failure the free list is untouched.
func (a *NextFit) morecore(nunits uint64) (uint64, error) {
	nu := max(nunits, a.minGrow)
	nbytes, ok := buf.MulOverflowSafe(int(nu), format.UnitSize)
	if !ok {
		return 0, fmt.Errorf("%w: %d units overflow", ErrOutOfMemory, nu)
	}

	off, err := a.r.Extend(nbytes)
	if err != nil {
		a.log.Warn("grow failed",
			"need_units", nunits, "grow_bytes", nbytes, "region_bytes", a.r.Len(), "error", err)
		return 0, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	a.data = a.r.Bytes()

	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(nbytes)
	a.log.Debug("grow",
		"need_units", nunits, "grow_units", nu, "offset", off, "region_bytes", len(a.data))

	bp := uint64(off)
	a.setSize(bp, nu)
	a.release(bp)

	if a.onGrow != nil {
		a.onGrow(nu)
	}
	return a.freep, nil
}

// Stats returns a snapshot of allocator counters.
func (a *NextFit) Stats() Stats {
	s := a.stats
	s.RegionBytes = a.r.Len()
	return s
}
