package translation

import (
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// RcvdReq is delivered to the application for every successfully
// decoded request except Heartbeat, which the core answers itself
// (spec.md §4.2 "Heartbeat semantics").
type RcvdReq struct {
	Local   *pfcpnode.LocalNode
	Remote  *pfcpnode.RemoteNode
	Session *pfcpnode.Session // nil for node-class messages.
	Msg     wire.AppMsg
}

// RcvdRsp is delivered to the application for every successfully
// decoded response except Heartbeat (spec.md §4.3 "RcvdRsp").
type RcvdRsp struct {
	Local   *pfcpnode.LocalNode
	Remote  *pfcpnode.RemoteNode
	ReqMsg  wire.AppMsg // the original request, echoed per spec.md §3 "ReqOut".
	Msg     wire.AppMsg
}

// EncodeReqError/EncodeRspError are surfaced when the Translator fails
// to serialize an outbound message (spec.md §7 "Encode errors").
type EncodeReqError struct {
	Local  *pfcpnode.LocalNode
	Remote *pfcpnode.RemoteNode
	Msg    wire.AppMsg
	Err    error
}

type EncodeRspError struct {
	Local  *pfcpnode.LocalNode
	Remote *pfcpnode.RemoteNode
	Msg    wire.AppMsg
	Err    error
}

// sndMsgEvent is the application's request to send an already-built
// message, queued to this stage for encoding (spec.md §4.3 "SndMsg").
type sndMsgEvent struct {
	local            *pfcpnode.LocalNode
	remote           *pfcpnode.RemoteNode
	msg              wire.AppMsg
	isHeartbeat      bool
	attempts         int
	retransmitMillis int64
}

// rcvdReqEvent/rcvdRspEvent mirror Communication's forwarded payloads.
type rcvdReqEvent struct {
	local   *pfcpnode.LocalNode
	remote  *pfcpnode.RemoteNode
	session *pfcpnode.Session
	data    []byte
	info    wire.MsgInfo
}

type rcvdRspEvent struct {
	local  *pfcpnode.LocalNode
	remote *pfcpnode.RemoteNode
	req    *pfcpnode.ReqOut
	data   []byte
	info   wire.MsgInfo
}

// sndHeartbeatReqEvent is Communication asking for a heartbeat to be
// encoded after the activity-window tick finds a silent remote
// (spec.md §4.2 "Activity-window tick").
type sndHeartbeatReqEvent struct {
	local  *pfcpnode.LocalNode
	remote *pfcpnode.RemoteNode
}
