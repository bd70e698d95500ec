package stats

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

func mustEndpoint(t *testing.T, s string) pfcpaddr.Endpoint {
	t.Helper()
	e, err := pfcpaddr.NewEndpoint(net.ParseIP(s))
	require.NoError(t, err)
	return e
}

func TestBuildSortsRemotesByAddressAndFillsMessages(t *testing.T) {
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 5, SentVectorLen: 2}, nil)
	remoteB, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.3"))
	require.NoError(t, err)
	remoteA, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	remoteA.RecordInbound(wire.MsgTypeHeartbeatRequest)
	remoteA.Stats.RecordSent(wire.MsgTypeHeartbeatRequest, 0)
	remoteB.RecordInbound(wire.MsgTypeSessionEstablishmentRequest)

	doc := Build([]*pfcpnode.LocalNode{local})
	require.Len(t, doc.LocalNodes, 1)
	ld := doc.LocalNodes[0]
	require.Equal(t, local.Address.String(), ld.LocalAddress)
	require.Len(t, ld.RemoteNodes, 2)
	require.Equal(t, remoteA.Address.String(), ld.RemoteNodes[0].RemoteAddress)
	require.Equal(t, remoteB.Address.String(), ld.RemoteNodes[1].RemoteAddress)

	hb, ok := ld.RemoteNodes[0].Messages["HeartbeatRequest"]
	require.True(t, ok)
	require.Equal(t, uint64(1), hb.Received)
	require.Len(t, hb.Sent, 2)
	require.Equal(t, uint64(1), hb.Sent[0])
	require.False(t, ld.RemoteNodes[0].LastActivity.IsZero())
}
