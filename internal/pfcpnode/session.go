package pfcpnode

import (
	"errors"
	"sync/atomic"
)

// ErrRemoteSeidAlreadySet is returned by Session.SetRemoteSeid on a
// second call (spec.md §3 "once set it is immutable — a second attempt
// fails with RemoteSeidAlreadySet").
var ErrRemoteSeidAlreadySet = errors.New("pfcpnode: remote seid already set")

// Session is owned jointly by one LocalNode and one RemoteNode,
// registered in both nodes' SEID maps (spec.md §3, §9 "Sessions are
// owned jointly by their two nodes' SEID maps (co-ownership)").
type Session struct {
	Local  *LocalNode
	Remote *RemoteNode

	LocalSeid uint64

	remoteSeid atomic.Uint64 // 0 until the peer's establishment response arrives.
}

// NewSession allocates a session with the given local SEID; the remote
// SEID is unset until SetRemoteSeid is called.
func NewSession(local *LocalNode, remote *RemoteNode, localSeid uint64) *Session {
	return &Session{Local: local, Remote: remote, LocalSeid: localSeid}
}

// RemoteSeid returns the peer-assigned SEID, or 0 if not yet set.
func (s *Session) RemoteSeid() uint64 {
	return s.remoteSeid.Load()
}

// SetRemoteSeid assigns the peer's SEID exactly once.
func (s *Session) SetRemoteSeid(seid uint64) error {
	if !s.remoteSeid.CompareAndSwap(0, seid) {
		return ErrRemoteSeidAlreadySet
	}
	return nil
}
