package arena

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umalloc/internal/format"
)

func baseAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// exerciseRegion checks the Region contract shared by every growable implementation.
func exerciseRegion(t *testing.T, r Region, capacity int) {
	t.Helper()

	require.Equal(t, format.ReservedSize, r.Len(), "fresh region holds only the reserved prefix")
	require.Len(t, r.Bytes(), format.ReservedSize)
	require.Zero(t, baseAddr(r.Bytes())%format.UnitSize, "base must be unit aligned")

	base := baseAddr(r.Bytes())
	prev := r.Len()
	for _, n := range []int{format.UnitSize, 4 * format.UnitSize, 256 * format.UnitSize} {
		off, err := r.Extend(n)
		require.NoError(t, err)
		assert.Equal(t, prev, off, "spans must be contiguous with the previous break")
		assert.GreaterOrEqual(t, off, format.ReservedSize)
		prev = off + n
		require.Equal(t, prev, r.Len())

		data := r.Bytes()
		require.Len(t, data, prev)
		require.Equal(t, base, baseAddr(data), "backing memory must not move")
		data[off] = 0x5a
		data[off+n-1] = 0xa5
	}

	_, err := r.Extend(capacity)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, prev, r.Len(), "failed extend must leave the region unchanged")

	_, err = r.Extend(format.UnitSize + 1)
	require.ErrorIs(t, err, ErrBadExtend)
	_, err = r.Extend(0)
	require.ErrorIs(t, err, ErrBadExtend)
}

func TestMemRegion(t *testing.T) {
	const limit = 64 * 1024
	m := NewMem(limit)
	require.Equal(t, limit, m.Cap())
	exerciseRegion(t, m, limit)
}

func TestMemRegionExactFill(t *testing.T) {
	m := NewMem(4 * format.UnitSize)
	off, err := m.Extend(3 * format.UnitSize)
	require.NoError(t, err)
	require.Equal(t, format.ReservedSize, off)

	_, err = m.Extend(format.UnitSize)
	require.ErrorIs(t, err, ErrExhausted)
}

func TestMemRegionMinimumLimit(t *testing.T) {
	m := NewMem(0)
	require.Equal(t, format.ReservedSize, m.Cap())
	_, err := m.Extend(format.UnitSize)
	require.ErrorIs(t, err, ErrExhausted)
}

func TestMappedRegion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	const reserve = 1 << 20
	m, err := NewMapped(reserve)
	require.NoError(t, err)
	defer m.Close()

	require.Equal(t, reserve, m.Cap())
	exerciseRegion(t, m, reserve)
}

func TestMappedRegionCommitsAcrossPages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	m, err := NewMapped(16 * format.PageSize)
	require.NoError(t, err)
	defer m.Close()

	// Grow in odd unit counts so the break crosses page boundaries mid-span.
	for i := 0; i < 20; i++ {
		off, err := m.Extend(37 * format.UnitSize)
		require.NoError(t, err)
		data := m.Bytes()
		for j := off; j < off+37*format.UnitSize; j += format.UnitSize {
			data[j] = byte(i)
		}
	}
	assert.LessOrEqual(t, m.committed, m.Cap())
	assert.GreaterOrEqual(t, m.committed, m.Len())
}

func TestMappedRegionClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	m, err := NewMapped(format.PageSize)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close is idempotent")

	_, err = m.Extend(format.UnitSize)
	require.True(t, errors.Is(err, ErrClosed))
	require.Nil(t, m.Bytes())
}

func TestFailingRegion(t *testing.T) {
	f := NewFailing()
	require.Len(t, f.Bytes(), format.ReservedSize)
	for _, n := range []int{format.UnitSize, 4096 * format.UnitSize} {
		_, err := f.Extend(n)
		require.ErrorIs(t, err, ErrExhausted)
	}
	require.Equal(t, format.ReservedSize, f.Len())
}

func TestDefaultReserve(t *testing.T) {
	r := DefaultReserve()
	require.Positive(t, r)
	require.Zero(t, r%format.PageSize)
	require.LessOrEqual(t, uint64(r), maxDefaultReserve)
}
