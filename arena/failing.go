package arena

import "github.com/joshuapare/umalloc/internal/format"

// Failing is a region that never grows. Only its reserved prefix exists.
type Failing struct {
	reserved [format.ReservedSize]byte
}

// NewFailing returns a region whose Extend always reports ErrExhausted.
func NewFailing() *Failing { return &Failing{} }

// Extend always fails.
func (f *Failing) Extend(n int) (int, error) {
	_, err := checkExtend(format.ReservedSize, n, format.ReservedSize)
	return 0, err
}

// Bytes returns the reserved prefix.
func (f *Failing) Bytes() []byte { return f.reserved[:] }

// Len returns format.ReservedSize.
func (f *Failing) Len() int { return format.ReservedSize }
