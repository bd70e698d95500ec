package idalloc

import "sync/atomic"

// SeidAllocator hands out monotonically increasing 64-bit local SEIDs
// starting at 1, skipping 0 on rollover (0 means "unset" per spec.md
// §4.1). Unlike the teacher's SEIDAllocator, this does not track a used
// set — spec.md §4.1 is explicit that neither allocator tracks frees,
// relying on window-based cleanup of the entries that reference a SEID
// instead.
type SeidAllocator struct {
	next atomic.Uint64
}

// NewSeidAllocator returns an allocator whose first Alloc() call yields
// start (or 1 if start is 0).
func NewSeidAllocator(start uint64) *SeidAllocator {
	a := &SeidAllocator{}
	if start == 0 {
		start = 1
	}
	a.next.Store(start)
	return a
}

// Alloc returns the next local SEID, never 0.
func (a *SeidAllocator) Alloc() uint64 {
	for {
		cur := a.next.Load()
		next := cur + 1
		if next == 0 {
			next = 1
		}
		if a.next.CompareAndSwap(cur, next) {
			return cur
		}
	}
}

// Free is a no-op; present for symmetry with spec.md §4.1.
func (a *SeidAllocator) Free(uint64) {}
