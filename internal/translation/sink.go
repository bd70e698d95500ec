package translation

import (
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
)

// CommunicationSink is the narrow slice of the Communication stage that
// Translation calls into, after encoding an outbound message (spec.md
// §4.3 "SndMsg").
type CommunicationSink interface {
	PostSndReq(req *pfcpnode.ReqOut)
	PostSndRsp(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, data []byte)

	// NotifyRcvdReqError/NotifyRcvdRspError report a decode failure so
	// Communication can drop its tracking state and log (spec.md §4.3
	// "if result null → RcvdReqError to Communication (which removes
	// the received-request entry and logs)"; §7 "Decode errors ...
	// not surfaced to application").
	NotifyRcvdReqError(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, err error)
	NotifyRcvdRspError(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, err error)
}

// ApplicationSink is how Translation delivers decoded messages and its
// own error taxonomy onward to the Application stage (spec.md §4.3).
type ApplicationSink interface {
	PostEvent(ev any)
}
