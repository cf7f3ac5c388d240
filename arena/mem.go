package arena

import (
	"unsafe"

	"github.com/joshuapare/umalloc/internal/buf"
	"github.com/joshuapare/umalloc/internal/format"
)

// Mem is a fixed-capacity region backed by Go memory.
type Mem struct {
	buf []byte // full capacity, base aligned to format.UnitSize
	brk int
}

// NewMem creates a region that can grow to limit bytes, reserved prefix
// included. Limits below format.ReservedSize are raised to it.
func NewMem(limit int) *Mem {
	limit = max(limit, format.ReservedSize)
	limit &^= format.UnitMask

	// One spare unit so the base can be shifted onto a unit boundary.
	size, ok := buf.AddOverflowSafe(limit, format.UnitSize)
	if !ok {
		limit -= format.UnitSize
		size = limit + format.UnitSize
	}
	raw := make([]byte, size)
	shift := alignShift(raw)

	return &Mem{
		buf: raw[shift : shift+limit : shift+limit],
		brk: format.ReservedSize,
	}
}

// alignShift returns how many bytes to skip so that the slice starts on a
// unit boundary. This is the only place a Go address is inspected.
func alignShift(raw []byte) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	return int((format.UnitSize - addr%format.UnitSize) % format.UnitSize)
}

// Extend grows the region by n bytes.
func (m *Mem) Extend(n int) (int, error) {
	end, err := checkExtend(m.brk, n, len(m.buf))
	if err != nil {
		return 0, err
	}
	off := m.brk
	m.brk = end
	return off, nil
}

// Bytes returns the committed part of the region.
func (m *Mem) Bytes() []byte { return m.buf[:m.brk] }

// Len returns the current size of the region.
func (m *Mem) Len() int { return m.brk }

// Cap returns the size the region can grow to.
func (m *Mem) Cap() int { return len(m.buf) }
