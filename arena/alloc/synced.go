package alloc

import "sync"

// Synced serializes every operation of a NextFit allocator behind one mutex.
// The whole free list is a single resource: any operation may touch any part
// of it, so finer-grained locking would not help.
type Synced struct {
	mu sync.Mutex
	a  *NextFit
}

// NewSynced wraps a. The caller must not use a directly afterwards.
func NewSynced(a *NextFit) *Synced {
	return &Synced{a: a}
}

// Alloc allocates a block with at least n payload bytes.
func (s *Synced) Alloc(n int) (Ptr, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(n)
}

// Free returns a block obtained from Alloc.
func (s *Synced) Free(p Ptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Free(p)
}

// Payload returns the full usable bytes of the live block at p.
func (s *Synced) Payload(p Ptr) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Payload(p)
}

// Stats returns a snapshot of allocator counters.
func (s *Synced) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Stats()
}

// Check verifies the free list invariants.
func (s *Synced) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Check()
}

// FreeBlocks returns the free blocks in address order.
func (s *Synced) FreeBlocks() []Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.FreeBlocks()
}
