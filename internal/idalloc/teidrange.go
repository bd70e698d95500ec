package idalloc

import (
	"fmt"
	"sync"
)

// TeidRangeManager hands out values in 0..(2^k-1) to remote peers so
// each peer can allocate TEIDs within its own slice (spec.md §4.6). k=0
// means a single range value 0 with capacity 1, which effectively
// disables range partitioning — every peer gets the same, only, value.
//
// original_source/include/epc/epfcp.h declares `class TeidRangeManager`
// but its implementation isn't part of the retrieved source; this is
// built directly from the spec's behavioral description.
type TeidRangeManager struct {
	mu       sync.Mutex
	free     []int8
	capacity int
}

// NewTeidRangeManager builds a manager for k in [0,7].
func NewTeidRangeManager(k int) (*TeidRangeManager, error) {
	if k < 0 || k > 7 {
		return nil, fmt.Errorf("idalloc: teidRangeBits must be in [0,7], got %d", k)
	}
	capacity := 1 << k
	free := make([]int8, capacity)
	for i := range free {
		free[i] = int8(i)
	}
	return &TeidRangeManager{free: free, capacity: capacity}, nil
}

// Assign pops a value from the free list. ok is false if the pool is
// exhausted.
func (m *TeidRangeManager) Assign() (value int8, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.free) == 0 {
		return -1, false
	}
	n := len(m.free) - 1
	v := m.free[n]
	m.free = m.free[:n]
	return v, true
}

// Release returns a previously assigned value to the free list. Passing
// a negative value (the "unassigned" sentinel, -1) is a no-op.
func (m *TeidRangeManager) Release(value int8) {
	if value < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.free = append(m.free, value)
}

// Capacity returns the total number of range values this manager was
// constructed with.
func (m *TeidRangeManager) Capacity() int {
	return m.capacity
}
