package communication

import (
	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// ReqTimeout is delivered when a non-heartbeat request exhausts its
// retransmit attempts (spec.md §4.2 "Send-with-retry", §7 "Request
// timeout"). Heartbeat exhaustion instead transitions the remote to
// Failed and emits pfcpnode.RemoteNodeStateChange — no ReqTimeout.
type ReqTimeout struct {
	Local  *pfcpnode.LocalNode
	Remote *pfcpnode.RemoteNode
	Msg    wire.AppMsg
}

// SndReqError is surfaced when the application reuses an in-flight
// sequence number (spec.md §4.2 "Outbound request").
type SndReqError struct {
	Local  *pfcpnode.LocalNode
	Remote *pfcpnode.RemoteNode
	Msg    wire.AppMsg
	Err    error
}

// SndRspError is surfaced when the matching received-request entry has
// already been reaped by the response-window GC (spec.md §4.2 "Outbound
// response").
type SndRspError struct {
	Local  *pfcpnode.LocalNode
	Remote *pfcpnode.RemoteNode
	Msg    wire.AppMsg
	Err    error
}

// inbound datagram, posted by a socket's read loop.
type inboundDatagramEvent struct {
	local *pfcpnode.LocalNode
	src   pfcpaddr.Endpoint
	data  []byte
}

// sndReqEvent is Translation handing Communication a freshly encoded
// outbound request (spec.md §4.2 "Outbound request").
type sndReqEvent struct {
	req *pfcpnode.ReqOut
}

// sndRspEvent is Translation handing Communication a freshly encoded
// outbound response (spec.md §4.2 "Outbound response").
type sndRspEvent struct {
	local  *pfcpnode.LocalNode
	remote *pfcpnode.RemoteNode
	seqNum uint32
	data   []byte
}

// reqTimeoutTimerEvent fires when a T1 timer expires (timerpool.Target).
type reqTimeoutTimerEvent struct {
	local  *pfcpnode.LocalNode
	seqNum uint32
}

// disconnectEvent starts the graceful drain of remote (spec.md §4.2
// "Disconnect").
type disconnectEvent struct {
	remote *pfcpnode.RemoteNode
}

// delNxtRmtSessionEvent deletes one session of remote and, if any remain,
// re-enqueues itself (spec.md §4.2 "Disconnect").
type delNxtRmtSessionEvent struct {
	remote *pfcpnode.RemoteNode
}

// delSessionEvent is the application-triggered explicit session destroy
// (spec.md §3 "Destroying a session is asynchronous").
type delSessionEvent struct {
	session *pfcpnode.Session
}
