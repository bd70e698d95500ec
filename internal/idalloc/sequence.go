// Package idalloc implements the monotonic ID generators of spec.md §4.1
// and §4.6: the sequence-number allocator, the SEID allocator, and the
// TEID-range manager. Grounded on the teacher's internal/session
// SequenceCounter/SEIDAllocator, corrected against spec.md where the two
// disagree (see DESIGN.md).
package idalloc

import "sync/atomic"

// sequenceMax is the 24-bit ceiling a PFCP sequence number wraps at
// (spec.md §4.1: "wraps to 0 atomically" past 0x00FFFFFF).
const sequenceMax uint32 = 0x00FFFFFF

// SequenceAllocator hands out monotonically increasing 24-bit sequence
// numbers starting at 0, wrapping to 0 after sequenceMax. Frees are
// no-ops: spec.md §4.1 relies on the response-window flip for cleanup,
// not on allocator bookkeeping.
type SequenceAllocator struct {
	next atomic.Uint32
}

// Alloc returns the next sequence number.
func (a *SequenceAllocator) Alloc() uint32 {
	for {
		cur := a.next.Load()
		next := cur + 1
		if next > sequenceMax {
			next = 0
		}
		if a.next.CompareAndSwap(cur, next) {
			return cur
		}
	}
}

// Free is a no-op; present for symmetry with spec.md §4.1's allocSeqNbr/
// freeSeqNbr pairing.
func (a *SequenceAllocator) Free(uint32) {}
