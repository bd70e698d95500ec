// Package timerpool implements the single-threaded wheel described in
// spec.md §4.5: a min-heap of one-shot timers serviced by one background
// goroutine, firing scheduled events into a target stage's queue.
//
// The original C++ stack (original_source/include/epc/epfcp.h) leans on
// an ETimerPool generic utility that isn't part of the retrieved source,
// so this is built fresh from the spec's behavioral description rather
// than ported line for line.
package timerpool

import (
	"container/heap"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ID identifies a registered timer for later cancellation.
type ID uint64

// Target receives a fired timer's event. Each PFCP stage (Communication,
// Translation) implements this over its own event queue.
type Target interface {
	PostTimerEvent(ev any)
}

type entry struct {
	deadline time.Time
	id       ID
	ev       any
	target   Target
	index    int // heap index, maintained by container/heap
	canceled bool
}

type timerHeap []*entry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Pool is a single-threaded min-heap timer wheel. The zero value is not
// usable; construct with New.
type Pool struct {
	mu      sync.Mutex
	heap    timerHeap
	byID    map[ID]*entry
	nextID  ID
	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
}

// New creates and starts a timer pool. Call Stop to shut down the
// background goroutine.
func New() *Pool {
	p := &Pool{
		byID:    make(map[ID]*entry),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go p.run()
	return p
}

// RegisterTimer schedules ev to be delivered to target after delay and
// returns an id that can be passed to UnregisterTimer.
func (p *Pool) RegisterTimer(delay time.Duration, ev any, target Target) ID {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	e := &entry{
		deadline: time.Now().Add(delay),
		id:       id,
		ev:       ev,
		target:   target,
	}
	p.byID[id] = e
	heap.Push(&p.heap, e)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return id
}

// UnregisterTimer cancels a pending timer. Unknown or already-fired ids
// are a no-op — the caller is not required to synchronize with a timer
// that may already be in flight (spec.md §5, "Cancellation & timeouts").
func (p *Pool) UnregisterTimer(id ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.byID[id]
	if !ok {
		return
	}
	delete(p.byID, id)
	e.canceled = true
	if e.index >= 0 {
		heap.Remove(&p.heap, e.index)
	}
}

// Stop halts the background goroutine. Pending timers are discarded.
func (p *Pool) Stop() {
	close(p.stop)
	<-p.stopped
}

func (p *Pool) run() {
	defer close(p.stopped)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		p.mu.Lock()
		var next time.Duration
		if len(p.heap) > 0 {
			next = time.Until(p.heap[0].deadline)
			if next < 0 {
				next = 0
			}
		} else {
			next = time.Hour
		}
		p.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(next)

		select {
		case <-p.stop:
			return
		case <-p.wake:
			continue
		case <-timer.C:
			p.fireExpired()
		}
	}
}

func (p *Pool) fireExpired() {
	now := time.Now()
	for {
		p.mu.Lock()
		if len(p.heap) == 0 || p.heap[0].deadline.After(now) {
			p.mu.Unlock()
			return
		}
		e := heap.Pop(&p.heap).(*entry)
		delete(p.byID, e.id)
		p.mu.Unlock()

		if e.canceled {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("timerpool: target panicked delivering timer event")
				}
			}()
			e.target.PostTimerEvent(e.ev)
		}()
	}
}
