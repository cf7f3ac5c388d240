package arena

import (
	"fmt"
	"math"

	"github.com/pbnjay/memory"

	"github.com/joshuapare/umalloc/internal/format"
	"github.com/joshuapare/umalloc/internal/mmfile"
)

// maxDefaultReserve bounds DefaultReserve on hosts with a lot of memory (64 GiB).
const maxDefaultReserve = uint64(1) << 36

// Mapped is a region backed by a virtual memory reservation. Pages are
// committed as the break moves past them; the reservation itself is never
// remapped, so the region never moves.
type Mapped struct {
	data      []byte // whole reservation
	brk       int
	committed int // page-aligned prefix of data that is accessible
	closed    bool
}

// DefaultReserve returns a reservation size suitable for a process-wide heap:
// the host's physical memory, capped at 64 GiB and at the platform's int range.
func DefaultReserve() int {
	r := maxDefaultReserve
	if total := memory.TotalMemory(); total > 0 && total < r {
		r = total
	}
	if r > uint64(math.MaxInt) {
		r = uint64(math.MaxInt)
	}
	return int(r) &^ format.PageMask
}

// NewMapped reserves reserve bytes of address space (rounded up to a page)
// and commits the first page.
func NewMapped(reserve int) (*Mapped, error) {
	reserve = max(format.AlignPage(reserve), format.PageSize)

	data, err := mmfile.Reserve(reserve)
	if err != nil {
		return nil, err
	}

	m := &Mapped{data: data, brk: format.ReservedSize}
	if err := m.commit(m.brk); err != nil {
		_ = mmfile.Release(data)
		return nil, err
	}
	return m, nil
}

// commit makes data[:end] accessible, rounding up to whole pages.
func (m *Mapped) commit(end int) error {
	if end <= m.committed {
		return nil
	}
	target := min(format.AlignPage(end), len(m.data))
	if err := mmfile.Commit(m.data[m.committed:target]); err != nil {
		return err
	}
	m.committed = target
	return nil
}

// Extend grows the region by n bytes, committing pages as needed.
func (m *Mapped) Extend(n int) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	end, err := checkExtend(m.brk, n, len(m.data))
	if err != nil {
		return 0, err
	}
	if err := m.commit(end); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExhausted, err)
	}
	off := m.brk
	m.brk = end
	return off, nil
}

// Bytes returns the committed part of the region.
func (m *Mapped) Bytes() []byte {
	if m.closed {
		return nil
	}
	return m.data[:m.brk]
}

// Len returns the current size of the region.
func (m *Mapped) Len() int { return m.brk }

// Cap returns the size of the reservation.
func (m *Mapped) Cap() int { return len(m.data) }

// Close releases the reservation. Every slice obtained from the region becomes
// invalid.
func (m *Mapped) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	data := m.data
	m.data = nil
	return mmfile.Release(data)
}
