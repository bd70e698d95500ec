package timerpool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	mu  sync.Mutex
	got []any
	ch  chan struct{}
}

func newRecordingTarget() *recordingTarget {
	return &recordingTarget{ch: make(chan struct{}, 16)}
}

func (r *recordingTarget) PostTimerEvent(ev any) {
	r.mu.Lock()
	r.got = append(r.got, ev)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recordingTarget) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for timer event %d/%d", i+1, n)
		}
	}
}

func TestTimerFiresAfterDelay(t *testing.T) {
	p := New()
	defer p.Stop()

	target := newRecordingTarget()
	start := time.Now()
	p.RegisterTimer(20*time.Millisecond, "hello", target)
	target.wait(t, 1)

	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.Equal(t, []any{"hello"}, target.got)
}

func TestUnregisterCancelsPendingTimer(t *testing.T) {
	p := New()
	defer p.Stop()

	target := newRecordingTarget()
	id := p.RegisterTimer(50*time.Millisecond, "cancel-me", target)
	p.UnregisterTimer(id)

	select {
	case <-target.ch:
		t.Fatal("canceled timer should not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnregisterUnknownIDIsNoop(t *testing.T) {
	p := New()
	defer p.Stop()
	require.NotPanics(t, func() { p.UnregisterTimer(ID(9999)) })
}

func TestTimersFireInOrder(t *testing.T) {
	p := New()
	defer p.Stop()

	target := newRecordingTarget()
	p.RegisterTimer(60*time.Millisecond, "third", target)
	p.RegisterTimer(20*time.Millisecond, "first", target)
	p.RegisterTimer(40*time.Millisecond, "second", target)

	target.wait(t, 3)
	require.Equal(t, []any{"first", "second", "third"}, target.got)
}
