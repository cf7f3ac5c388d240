package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(a *NextFit)
		off     uint64
		reason  string
	}{
		{
			name:    "sentinel size",
			corrupt: func(a *NextFit) { a.setSize(sentinel, 1) },
			off:     sentinel,
			reason:  "sentinel size",
		},
		{
			name:    "misaligned link",
			corrupt: func(a *NextFit) { a.setNext(0x40, 0x108) },
			off:     0x108,
			reason:  "not unit aligned",
		},
		{
			name:    "link past region end",
			corrupt: func(a *NextFit) { a.setNext(0x400, 0x2000) },
			off:     0x2000,
			reason:  "outside region",
		},
		{
			name:    "address order broken",
			corrupt: func(a *NextFit) { a.setNext(0x100, 0x40) },
			off:     0x40,
			reason:  "address order",
		},
		{
			name:    "self loop",
			corrupt: func(a *NextFit) { a.setNext(0x400, 0x400) },
			off:     0x400,
			reason:  "address order",
		},
		{
			name:    "adjacent free blocks",
			corrupt: func(a *NextFit) { a.setSize(0x40, 12) },
			off:     0x100,
			reason:  "adjacent",
		},
		{
			name:    "overlapping free blocks",
			corrupt: func(a *NextFit) { a.setSize(0x40, 13) },
			off:     0x100,
			reason:  "overlaps",
		},
		{
			name:    "zero size",
			corrupt: func(a *NextFit) { a.setSize(0x100, 0) },
			off:     0x100,
			reason:  "does not fit",
		},
		{
			name:    "size past region end",
			corrupt: func(a *NextFit) { a.setSize(0x400, 0x100) },
			off:     0x400,
			reason:  "does not fit",
		},
		{
			name:    "cursor off list",
			corrupt: func(a *NextFit) { a.freep = 0x200 },
			off:     0x200,
			reason:  "cursor",
		},
		{
			name:    "free units miscounted",
			corrupt: func(a *NextFit) { a.stats.FreeUnits++ },
			off:     sentinel,
			reason:  "free units",
		},
		{
			name:    "in-use units miscounted",
			corrupt: func(a *NextFit) { a.stats.InUseUnits++ },
			off:     sentinel,
			reason:  "managed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := buildFreeList(t, fixtureLimit, fixtureBlocks, 0x100)
			tt.corrupt(a)

			err := a.Check()
			require.Error(t, err)

			var ie *InvariantError
			require.True(t, errors.As(err, &ie), "got %T", err)
			assert.Equal(t, tt.off, ie.Off)
			assert.Contains(t, ie.Reason, tt.reason)
		})
	}
}

func TestCheck_BeforeFirstAlloc(t *testing.T) {
	a := newTestAllocator(t, 1<<16, 0)
	assert.NoError(t, a.Check())
}

func TestCheck_HealthyAfterMixedTraffic(t *testing.T) {
	a := newTestAllocator(t, 1<<20, 32)

	var live []Ptr
	for i := 0; i < 200; i++ {
		p, _, err := a.Alloc((i * 37) % 900)
		require.NoError(t, err)
		live = append(live, p)
		if i%3 == 0 {
			a.Free(live[i/2])
			live[i/2] = Nil
		}
		require.NoError(t, a.Check(), "step %d", i)
	}
}
