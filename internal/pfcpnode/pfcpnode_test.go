package pfcpnode

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omec-project/pfcpstack/internal/idalloc"
	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/wire"
)

func mustEndpoint(t *testing.T, s string) pfcpaddr.Endpoint {
	t.Helper()
	e, err := pfcpaddr.NewEndpoint(net.ParseIP(s))
	require.NoError(t, err)
	return e
}

func TestCreateRemoteNodeIsIdempotentUntilStopped(t *testing.T) {
	local := NewLocalNode(mustEndpoint(t, "10.0.0.1"), Config{NbrActivityWnds: 10, SentVectorLen: 3}, nil)
	addr := mustEndpoint(t, "10.0.0.2")

	r1, _, err := local.CreateRemoteNode(addr)
	require.NoError(t, err)
	require.Equal(t, RemoteStarted, r1.State())

	_, _, err = local.CreateRemoteNode(addr)
	require.ErrorIs(t, err, ErrRemoteAlreadyStarted)

	r1.SetState(RemoteStopped)
	r2, _, err := local.CreateRemoteNode(addr)
	require.NoError(t, err)
	require.Same(t, r1, r2)
	require.Equal(t, RemoteStarted, r2.State())
}

func TestCreateRemoteNodeAssignsTeidRange(t *testing.T) {
	mgr, err := idalloc.NewTeidRangeManager(1)
	require.NoError(t, err)

	local := NewLocalNode(mustEndpoint(t, "10.0.0.1"), Config{NbrActivityWnds: 10, SentVectorLen: 3, AssignTeidRange: true}, mgr)

	r, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, r.TeidRangeValue(), int8(0))

	_, _, err = local.CreateRemoteNode(mustEndpoint(t, "10.0.0.3"))
	require.NoError(t, err)

	_, _, err = local.CreateRemoteNode(mustEndpoint(t, "10.0.0.4"))
	require.ErrorIs(t, err, ErrTeidRangePoolExhausted)

	local.ReleaseRemoteNode(r)
	_, _, err = local.CreateRemoteNode(mustEndpoint(t, "10.0.0.4"))
	require.NoError(t, err)
}

func TestSessionRemoteSeidAssignedOnce(t *testing.T) {
	local := NewLocalNode(mustEndpoint(t, "10.0.0.1"), Config{NbrActivityWnds: 10, SentVectorLen: 3}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	s := local.CreateSession(remote)
	require.Equal(t, uint64(1), s.LocalSeid)
	require.Equal(t, uint64(0), s.RemoteSeid())

	require.NoError(t, s.SetRemoteSeid(42))
	require.Equal(t, uint64(42), s.RemoteSeid())
	require.ErrorIs(t, s.SetRemoteSeid(43), ErrRemoteSeidAlreadySet)
}

func TestOutReqTableRejectsDuplicateSeqNum(t *testing.T) {
	local := NewLocalNode(mustEndpoint(t, "10.0.0.1"), Config{NbrActivityWnds: 10, SentVectorLen: 3}, nil)

	r1 := &ReqOut{SeqNum: 7}
	require.True(t, local.PutOutReq(r1))

	r2 := &ReqOut{SeqNum: 7}
	require.False(t, local.PutOutReq(r2))

	got, ok := local.OutReq(7)
	require.True(t, ok)
	require.Same(t, r1, got)
}

func TestResponseWindowSweepRemovesTaggedEntriesOnly(t *testing.T) {
	local := NewLocalNode(mustEndpoint(t, "10.0.0.1"), Config{NbrActivityWnds: 10, SentVectorLen: 3}, nil)
	local.PutOutReq(&ReqOut{SeqNum: 1, RspWndTag: 1})
	local.PutOutReq(&ReqOut{SeqNum: 2, RspWndTag: 2})

	removed := local.SweepOutReqs(2)
	require.Len(t, removed, 1)
	require.Equal(t, uint32(2), removed[0].SeqNum)

	_, ok := local.OutReq(1)
	require.True(t, ok)
	_, ok = local.OutReq(2)
	require.False(t, ok)
}

func TestReceivedRequestDuplicateSuppression(t *testing.T) {
	local := NewLocalNode(mustEndpoint(t, "10.0.0.1"), Config{NbrActivityWnds: 10, SentVectorLen: 3}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	require.False(t, remote.HasReceived(42))
	remote.PutReceived(RcvdReq{SeqNum: 42, Type: wire.MsgTypeSessionEstablishmentRequest, RspWndTag: 1})
	require.True(t, remote.HasReceived(42))

	n := remote.SweepReceived(1)
	require.Equal(t, 1, n)
	require.False(t, remote.HasReceived(42))
}

func TestActivityWindowSilenceDetection(t *testing.T) {
	w := NewActivityWindow(3)

	require.True(t, w.Rotate())
	require.True(t, w.Rotate())

	w.Touch()
	require.False(t, w.Rotate())
	require.False(t, w.Rotate())
	require.False(t, w.Rotate())
	require.True(t, w.Rotate())
}

func TestObserveStartAtSurfacesRestartOnlyWhenLater(t *testing.T) {
	local := NewLocalNode(mustEndpoint(t, "10.0.0.1"), Config{NbrActivityWnds: 10, SentVectorLen: 3}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	t0 := time.Unix(1000, 0)
	_, first, restarted := remote.ObserveStartAt(t0)
	require.True(t, first)
	require.False(t, restarted)

	_, first, restarted = remote.ObserveStartAt(t0)
	require.False(t, first)
	require.False(t, restarted)

	t1 := time.Unix(2000, 0)
	prior, first, restarted := remote.ObserveStartAt(t1)
	require.False(t, first)
	require.True(t, restarted)
	require.Equal(t, t0, prior)
	require.Equal(t, t1, remote.StartAt())
}
