package pfcpnode

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/omec-project/pfcpstack/internal/idalloc"
	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
)

// ErrTeidRangePoolExhausted is returned by CreateRemoteNode when
// assignTeidRange is enabled and the TEID-range manager has no values
// left (spec.md §4.1 "allocate a TEID-range value (fail if pool
// exhausted)").
var ErrTeidRangePoolExhausted = errors.New("pfcpnode: teid range pool exhausted")

// ErrRemoteAlreadyStarted is returned by CreateRemoteNode when the
// remote for this address already exists and is Started (spec.md §4.1
// "idempotent on (ip): if an existing remote is Started, fail warning").
var ErrRemoteAlreadyStarted = errors.New("pfcpnode: remote node already started")

// TeidRangeAllocator is the narrow slice of idalloc.TeidRangeManager
// CreateRemoteNode needs; kept as an interface so LocalNode can be
// constructed with assignTeidRange disabled (spec.md §4.6 "k=0 ...
// effectively disables TEID-range partitioning").
type TeidRangeAllocator interface {
	Assign() (int8, bool)
	Release(int8)
}

// LocalNode is the application's handle on a UDP bind address
// (spec.md §3, §4.1).
type LocalNode struct {
	Address pfcpaddr.Endpoint
	StartAt time.Time // Recovery Time Stamp reported by this node.

	nbrActivityWnds int
	sentVectorLen   int
	assignTeidRange bool
	teidRanges      TeidRangeAllocator

	seqAlloc  *idalloc.SequenceAllocator
	seidAlloc *idalloc.SeidAllocator

	mu      sync.RWMutex
	state   LocalState
	outReqs map[uint32]*ReqOut // keyed by sequence number.
	remotes map[string]*RemoteNode // keyed by Endpoint.String().
	sessByLocalSeid map[uint64]*Session
}

// Config bundles the construction-time knobs LocalNode needs from
// internal/config.Config, kept narrow to avoid an import cycle.
type Config struct {
	NbrActivityWnds int
	SentVectorLen   int
	AssignTeidRange bool
}

// NewLocalNode constructs a LocalNode bound to addr, in state
// Initialized. teidRanges may be nil when assignTeidRange is false.
func NewLocalNode(addr pfcpaddr.Endpoint, cfg Config, teidRanges TeidRangeAllocator) *LocalNode {
	return &LocalNode{
		Address:         addr,
		nbrActivityWnds: cfg.NbrActivityWnds,
		sentVectorLen:   cfg.SentVectorLen,
		assignTeidRange: cfg.AssignTeidRange,
		teidRanges:      teidRanges,
		seqAlloc:        &idalloc.SequenceAllocator{},
		seidAlloc:       idalloc.NewSeidAllocator(0),
		state:           LocalInitialized,
		outReqs:         make(map[uint32]*ReqOut),
		remotes:         make(map[string]*RemoteNode),
		sessByLocalSeid: make(map[uint64]*Session),
	}
}

func (n *LocalNode) State() LocalState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// SetState transitions state and returns the previous value, so callers
// can decide whether to emit LocalNodeStateChange.
func (n *LocalNode) SetState(next LocalState) (previous LocalState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	previous = n.state
	n.state = next
	return previous
}

// Start marks the node Started and sets its Recovery Time Stamp to now,
// per spec.md §3 "start time (set at creation, used as Recovery Time
// Stamp)". It returns the previous state so the caller can emit
// LocalNodeStateChange (spec.md §4.1 "state changes emit a
// LocalNodeStateChange event").
func (n *LocalNode) Start(now time.Time) (previous LocalState) {
	previous = n.SetState(LocalStarted)
	n.StartAt = now
	return previous
}

// Stop transitions the node to Stopping, returning the previous state.
// The caller (the Communication stage, which owns the node's socket)
// is responsible for draining it and calling Stopped once torn down.
func (n *LocalNode) Stop() (previous LocalState) {
	return n.SetState(LocalStopping)
}

// Stopped marks the node Stopped once its socket is closed and its
// read loop has exited.
func (n *LocalNode) Stopped() (previous LocalState) {
	return n.SetState(LocalStopped)
}

func (n *LocalNode) AllocSeqNbr() uint32 { return n.seqAlloc.Alloc() }
func (n *LocalNode) FreeSeqNbr(uint32)   {} // no-op; window-based cleanup (spec.md §4.1).

func (n *LocalNode) AllocSeid() uint64 { return n.seidAlloc.Alloc() }
func (n *LocalNode) FreeSeid(uint64)   {} // no-op; window-based cleanup (spec.md §4.1).

// CreateRemoteNode implements spec.md §4.1's createRemoteNode(ip, port).
// It returns the remote's previous state alongside it so the caller can
// emit RemoteNodeStateChange for the transition to Started (spec.md
// §4.1 "...transition to Started, emit a RemoteNodeStateChange event").
func (n *LocalNode) CreateRemoteNode(addr pfcpaddr.Endpoint) (remote *RemoteNode, previous RemoteState, err error) {
	key := addr.String()

	n.mu.Lock()
	if existing, ok := n.remotes[key]; ok {
		n.mu.Unlock()
		if existing.State() == RemoteStarted {
			return nil, RemoteStarted, fmt.Errorf("%w: %s", ErrRemoteAlreadyStarted, key)
		}
		previous = existing.SetState(RemoteStarted)
		return existing, previous, nil
	}
	n.mu.Unlock()

	var rangeVal int8 = -1
	if n.assignTeidRange {
		if n.teidRanges == nil {
			return nil, RemoteInitialized, fmt.Errorf("%w: teid ranges enabled but no allocator configured", ErrTeidRangePoolExhausted)
		}
		v, ok := n.teidRanges.Assign()
		if !ok {
			return nil, RemoteInitialized, ErrTeidRangePoolExhausted
		}
		rangeVal = v
	}

	remote = NewRemoteNode(n, addr, n.nbrActivityWnds, n.sentVectorLen)
	remote.SetTeidRangeValue(rangeVal)
	previous = remote.SetState(RemoteStarted)

	n.mu.Lock()
	n.remotes[key] = remote
	n.mu.Unlock()

	return remote, previous, nil
}

// RemoteNode looks up an existing remote by address, without creating one.
func (n *LocalNode) RemoteNode(addr pfcpaddr.Endpoint) (*RemoteNode, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	r, ok := n.remotes[addr.String()]
	return r, ok
}

// RemoteNodes returns a snapshot slice of every registered remote, used
// by the activity-window and response-window ticks.
func (n *LocalNode) RemoteNodes() []*RemoteNode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*RemoteNode, 0, len(n.remotes))
	for _, r := range n.remotes {
		out = append(out, r)
	}
	return out
}

// ReleaseRemoteNode drops the remote from the table and returns its TEID
// range value to the pool, if one was assigned.
func (n *LocalNode) ReleaseRemoteNode(r *RemoteNode) {
	n.mu.Lock()
	delete(n.remotes, r.Address.String())
	n.mu.Unlock()

	if n.assignTeidRange && n.teidRanges != nil {
		if v := r.TeidRangeValue(); v >= 0 {
			n.teidRanges.Release(v)
		}
	}
}

// CreateSession implements spec.md §4.1's createSession(local, remote).
func (n *LocalNode) CreateSession(remote *RemoteNode) *Session {
	localSeid := n.AllocSeid()
	s := NewSession(n, remote, localSeid)

	n.mu.Lock()
	n.sessByLocalSeid[localSeid] = s
	n.mu.Unlock()

	return s
}

// GetSession implements spec.md §4.1's getSession(localSeid).
func (n *LocalNode) GetSession(localSeid uint64) (*Session, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	s, ok := n.sessByLocalSeid[localSeid]
	return s, ok
}

// DeleteSession removes a session from the local SEID map; the caller
// is also responsible for removing it from the owning RemoteNode's map.
func (n *LocalNode) DeleteSession(localSeid uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.sessByLocalSeid, localSeid)
}

// Outbound-request table, keyed by sequence number (spec.md §3 "ReqOut").

// PutOutReq inserts a new outbound-request entry. ok is false if an
// entry with this sequence number already exists (spec.md §4.2
// "Outbound request" — the application reused a number).
func (n *LocalNode) PutOutReq(r *ReqOut) (ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.outReqs[r.SeqNum]; exists {
		return false
	}
	n.outReqs[r.SeqNum] = r
	return true
}

func (n *LocalNode) OutReq(seqNum uint32) (*ReqOut, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	r, ok := n.outReqs[seqNum]
	return r, ok
}

func (n *LocalNode) DeleteOutReq(seqNum uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.outReqs, seqNum)
}

// SweepOutReqs deletes every outbound-request entry tagged with the
// given response-window value, returning the removed entries so the
// caller can cancel their timers (spec.md §4.2 "Response-window tick").
func (n *LocalNode) SweepOutReqs(tag RspWndTag) []*ReqOut {
	n.mu.Lock()
	defer n.mu.Unlock()
	var removed []*ReqOut
	for seq, r := range n.outReqs {
		if r.RspWndTag == tag {
			removed = append(removed, r)
			delete(n.outReqs, seq)
		}
	}
	return removed
}
