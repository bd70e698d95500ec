package pfcpnode

import (
	"sync"
	"time"

	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// RemoteNode is the peer-side bookkeeping of spec.md §3, owned by the
// LocalNode that discovered or created it.
type RemoteNode struct {
	Address pfcpaddr.Endpoint
	Owner   *LocalNode

	mu           sync.RWMutex
	state        RemoteState
	startAt      time.Time // zero until the peer's Recovery Time Stamp is first observed.
	teidRangeVal int8      // -1 if unassigned (spec.md §4.6).

	Activity *ActivityWindow
	Stats    *RemoteStats

	received map[uint32]RcvdReq        // sequence number -> response-window tag.
	sessions map[uint64]*Session       // keyed by remote SEID.
}

// NewRemoteNode constructs a RemoteNode in state Initialized, per
// spec.md §4.1 ("createRemoteNode ... initialize activity windows,
// register under the remote IP, transition to Started").
func NewRemoteNode(owner *LocalNode, addr pfcpaddr.Endpoint, nbrActivityWnds, sentVectorLen int) *RemoteNode {
	return &RemoteNode{
		Address:      addr,
		Owner:        owner,
		state:        RemoteInitialized,
		teidRangeVal: -1,
		Activity:     NewActivityWindow(nbrActivityWnds),
		Stats:        NewRemoteStats(sentVectorLen),
		received:     make(map[uint32]RcvdReq),
		sessions:     make(map[uint64]*Session),
	}
}

func (r *RemoteNode) State() RemoteState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// SetState transitions the remote's lifecycle state and reports the
// previous state, so the caller can decide whether a RemoteNodeStateChange
// event is warranted.
func (r *RemoteNode) SetState(next RemoteState) (previous RemoteState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous = r.state
	r.state = next
	return previous
}

func (r *RemoteNode) StartAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.startAt
}

// ObserveStartAt compares a newly-seen Recovery Time Stamp against the
// one on record (spec.md §3 "The remote's start time is compared on
// every heartbeat and on every association message; if the peer reports
// a later start time than recorded, a Restart event is surfaced").
// first reports whether this is the first time a start time has been
// recorded (no restart should be surfaced for that case); restarted
// reports whether ts is strictly later than the previously recorded,
// non-zero start time.
func (r *RemoteNode) ObserveStartAt(ts time.Time) (prior time.Time, first bool, restarted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior = r.startAt
	first = prior.IsZero()
	restarted = !first && ts.After(prior)
	if first || restarted {
		r.startAt = ts
	}
	return prior, first, restarted
}

// TeidRangeValue returns the assigned range value, or -1 if unassigned.
func (r *RemoteNode) TeidRangeValue() int8 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.teidRangeVal
}

func (r *RemoteNode) SetTeidRangeValue(v int8) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teidRangeVal = v
}

// HasReceived reports whether seqNum is already tracked as a received
// request (spec.md §4.2 step 5a, duplicate suppression).
func (r *RemoteNode) HasReceived(seqNum uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.received[seqNum]
	return ok
}

// PutReceived records a newly accepted request's sequence number tagged
// with the current response-window value.
func (r *RemoteNode) PutReceived(entry RcvdReq) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received[entry.SeqNum] = entry
}

// TouchReceived updates the response-window tag of an existing received
// entry, e.g. when a response is finally sent for it (spec.md §4.2
// "Outbound response").
func (r *RemoteNode) TouchReceived(seqNum uint32, tag RspWndTag) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.received[seqNum]
	if !ok {
		return false
	}
	entry.RspWndTag = tag
	r.received[seqNum] = entry
	return true
}

// DeleteReceived removes a single received-request entry, used when its
// decode failed (spec.md §7 "Decode errors").
func (r *RemoteNode) DeleteReceived(seqNum uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.received, seqNum)
}

// SweepReceived deletes every received-request entry tagged with the
// given value, returning the count removed (spec.md §4.2
// "Response-window tick").
func (r *RemoteNode) SweepReceived(tag RspWndTag) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for seq, entry := range r.received {
		if entry.RspWndTag == tag {
			delete(r.received, seq)
			n++
		}
	}
	return n
}

// Session lookup/registration, keyed by remote SEID.

func (r *RemoteNode) Session(remoteSeid uint64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[remoteSeid]
	return s, ok
}

func (r *RemoteNode) PutSession(remoteSeid uint64, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[remoteSeid] = s
}

func (r *RemoteNode) DeleteSession(remoteSeid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, remoteSeid)
}

// SessionCount reports the number of sessions still registered under
// this remote, used by Disconnect's drain loop (spec.md §4.2).
func (r *RemoteNode) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// AnySessionSeid returns an arbitrary remaining session's remote SEID,
// used by the disconnect drain loop to pick the next session to delete.
func (r *RemoteNode) AnySessionSeid() (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for seid := range r.sessions {
		return seid, true
	}
	return 0, false
}

// RecordInbound marks activity and updates per-message received
// counters for an inbound datagram of the given type (spec.md §4.2
// step 3).
func (r *RemoteNode) RecordInbound(t wire.MsgType) {
	r.Activity.Touch()
	r.Stats.RecordReceived(t)
}
