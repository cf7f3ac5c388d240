package alloc

import "github.com/joshuapare/umalloc/internal/format"

// sentinel is the header offset of the list anchor. It lives in the region's
// reserved prefix, has size 0, and is the lowest address on the list.
const sentinel uint64 = 0

// Block describes one free block.
type Block struct {
	Off   uint64 // header offset in the region
	Units uint64 // size in units, header included
}

// Bytes returns the block size in bytes.
func (b Block) Bytes() uint64 { return format.UnitBytes(b.Units) }

// End returns the offset just past the block.
func (b Block) End() uint64 { return b.Off + b.Bytes() }

// init links the sentinel to itself and parks the cursor on it.
func (a *NextFit) init() {
	a.setNext(sentinel, sentinel)
	a.setSize(sentinel, 0)
	a.freep = sentinel
	a.ready = true
}

// locate returns the free block p after which bp belongs: either
// p < bp < p.next, or p is the wrap point (p >= p.next) and bp lies above p
// or below p.next. The search starts at the cursor and ends within one lap
// because the sentinel guarantees the list is never empty.
func (a *NextFit) locate(bp uint64) uint64 {
	p := a.freep
	for {
		nx := a.next(p)
		if bp > p && bp < nx {
			return p
		}
		if p >= nx && (bp > p || bp < nx) {
			return p
		}
		p = nx
	}
}

// release links the block at bp into the free list, merging it with an
// address-adjacent successor and predecessor, and moves the cursor to the
// block that now precedes it.
func (a *NextFit) release(bp uint64) {
	p := a.locate(bp)
	units := a.size(bp)
	a.stats.FreeUnits += units

	if nx := a.next(p); a.end(bp) == nx {
		a.setSize(bp, units+a.size(nx))
		a.setNext(bp, a.next(nx))
		a.stats.CoalesceForward++
	} else {
		a.setNext(bp, nx)
	}

	if a.end(p) == bp {
		a.setSize(p, a.size(p)+a.size(bp))
		a.setNext(p, a.next(bp))
		a.stats.CoalesceBackward++
	} else {
		a.setNext(p, bp)
	}

	a.freep = p
}

// Walk calls fn for each free block in address order, stopping early when fn
// returns false. The sentinel is not visited.
func (a *NextFit) Walk(fn func(Block) bool) {
	if !a.ready {
		return
	}
	for p := a.next(sentinel); p != sentinel; p = a.next(p) {
		if !fn(Block{Off: p, Units: a.size(p)}) {
			return
		}
	}
}

// FreeBlocks returns the free blocks in address order.
func (a *NextFit) FreeBlocks() []Block {
	var blocks []Block
	a.Walk(func(b Block) bool {
		blocks = append(blocks, b)
		return true
	})
	return blocks
}

// Cursor returns the header offset where the next search starts.
func (a *NextFit) Cursor() uint64 { return a.freep }
