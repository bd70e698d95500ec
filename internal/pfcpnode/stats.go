package pfcpnode

import (
	"sort"
	"sync"

	"github.com/omec-project/pfcpstack/internal/wire"
)

// MessageStats is the per-message-type counter bundle of spec.md §3/§6:
// "stats {per-message-type received/timeout counters and a sent-attempt
// vector of fixed small arity}".
type MessageStats struct {
	ID       wire.MsgType
	Received uint64
	Timeout  uint64
	Sent     []uint64 // Sent[i] counts attempt i+1 across all requests of this type.
}

// RemoteStats tracks MessageStats per message type for one RemoteNode,
// guarded by its own lock (spec.md §5 "RemoteNode.stats — reader/writer
// lock; reads during metrics collection, writes on counter increments").
type RemoteStats struct {
	mu       sync.RWMutex
	sentLen  int
	messages map[wire.MsgType]*MessageStats
}

// NewRemoteStats builds a stats bundle whose sent[] vectors are sized
// to max(n1, heartbeatN1) as spec.md §6 requires.
func NewRemoteStats(sentLen int) *RemoteStats {
	if sentLen < 1 {
		sentLen = 1
	}
	return &RemoteStats{sentLen: sentLen, messages: make(map[wire.MsgType]*MessageStats)}
}

func (s *RemoteStats) entry(t wire.MsgType) *MessageStats {
	m, ok := s.messages[t]
	if !ok {
		m = &MessageStats{ID: t, Sent: make([]uint64, s.sentLen)}
		s.messages[t] = m
	}
	return m
}

// RecordSent increments the counter for the given attempt index (0-based).
// Attempts beyond the configured vector length are folded into the last
// slot rather than dropped.
func (s *RemoteStats) RecordSent(t wire.MsgType, attemptIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.entry(t)
	if attemptIndex >= len(m.Sent) {
		attemptIndex = len(m.Sent) - 1
	}
	m.Sent[attemptIndex]++
}

func (s *RemoteStats) RecordReceived(t wire.MsgType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(t).Received++
}

func (s *RemoteStats) RecordTimeout(t wire.MsgType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(t).Timeout++
}

// Snapshot returns a stable-ordered copy suitable for JSON/Prometheus
// rendering without holding the lock while the caller marshals it.
func (s *RemoteStats) Snapshot() []MessageStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MessageStats, 0, len(s.messages))
	for _, m := range s.messages {
		sentCopy := make([]uint64, len(m.Sent))
		copy(sentCopy, m.Sent)
		out = append(out, MessageStats{ID: m.ID, Received: m.Received, Timeout: m.Timeout, Sent: sentCopy})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
