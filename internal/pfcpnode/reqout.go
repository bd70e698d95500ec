package pfcpnode

import (
	"github.com/omec-project/pfcpstack/internal/timerpool"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// RspWndTag is the global two-state response-window toggle of spec.md
// §3 ("Response window"). Only the values 1 and 2 are ever used; the
// zero value means "not yet tagged".
type RspWndTag uint8

// ReqOut is the outbound-request table entry of spec.md §3: created
// when a request is transmitted and matched by sequence number on
// response. A matched entry is tagged with the current response window
// and reaped by the response-window tick; an entry that never gets a
// response is removed when its retransmit attempts run out.
type ReqOut struct {
	Local  *LocalNode
	Remote *RemoteNode

	Class  wire.MsgClass
	Type   wire.MsgType
	SeqNum uint32

	Bytes   []byte
	Msg     wire.AppMsg // the original typed application message, echoed back on timeout.
	IsHeartbeat bool

	AttemptsRemaining int
	AttemptIndex      int // 0-based count of sends so far, indexes Stats.Sent.
	RetransmitMillis  int64
	TimerID           timerpool.ID
	RspWndTag         RspWndTag
}

// RcvdReq is the received-request table entry of spec.md §3: a
// sequence number tagged with the response window it arrived in, used
// both for duplicate suppression and as the gating check for sending a
// response.
type RcvdReq struct {
	SeqNum    uint32
	Class     wire.MsgClass
	Type      wire.MsgType
	RspWndTag RspWndTag
}
