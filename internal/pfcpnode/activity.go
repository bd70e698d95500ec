package pfcpnode

import (
	"sync"
	"time"
)

// ActivityWindow is the per-remote ring of counters described in
// spec.md §3: "Each remote has a ring of N counters ... rotated at a
// fixed cadence ... Any inbound datagram increments the current window.
// A heartbeat is synthesized only after the ring has completed one full
// rotation with no received traffic."
type ActivityWindow struct {
	mu        sync.Mutex
	counts    []uint32
	current   int
	lastTouch time.Time
}

// NewActivityWindow builds a ring of n counters, all starting at zero.
func NewActivityWindow(n int) *ActivityWindow {
	if n < 1 {
		n = 1
	}
	return &ActivityWindow{counts: make([]uint32, n)}
}

// Touch increments the current window's counter; called on any inbound
// datagram from this remote.
func (w *ActivityWindow) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[w.current]++
	w.lastTouch = time.Now()
}

// LastTouch returns the time of the most recent Touch, used to render
// spec.md §6's stats `last_activity` field. Zero if never touched.
func (w *ActivityWindow) LastTouch() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastTouch
}

// Rotate advances to the next window, zeroing it, and reports whether
// the ring as a whole was silent (every slot, including the one just
// vacated, was zero) before rotation — the condition under which
// Communication synthesizes a heartbeat (spec.md §4.2 "Activity-window
// tick").
func (w *ActivityWindow) Rotate() (wasSilent bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	wasSilent = true
	for _, c := range w.counts {
		if c != 0 {
			wasSilent = false
			break
		}
	}
	w.current = (w.current + 1) % len(w.counts)
	w.counts[w.current] = 0
	return wasSilent
}

// PreIncrement bumps the current window immediately after a heartbeat is
// sent, so a burst of heartbeats is not fired back-to-back within the
// same rotation (spec.md §4.2).
func (w *ActivityWindow) PreIncrement() {
	w.Touch()
}
