package communication

import (
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// TranslationSink is the narrow slice of the Translation stage that
// Communication calls into: handing off a decoded-pending request or
// response, and asking it to encode a synthesized heartbeat (spec.md
// §4.2/§4.3). Defined here, not in package translation, so this package
// has no import-time dependency on it — pkg/pfcpstack wires the concrete
// *translation.Stage in at startup.
type TranslationSink interface {
	// session is the session a session-class request targets: created
	// on the fly for a Session Establishment Request (spec.md §4.2 step
	// 5b), otherwise looked up by info.Seid. It is nil for node-class
	// requests.
	PostRcvdReq(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, session *pfcpnode.Session, data []byte, info wire.MsgInfo)
	PostRcvdRsp(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, req *pfcpnode.ReqOut, data []byte, info wire.MsgInfo)
	PostSndHeartbeatReq(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode)
}

// ApplicationSink is how Communication surfaces events that never pass
// through Translation: lifecycle changes, restarts, and the error
// taxonomy of spec.md §7 that originates in this stage.
type ApplicationSink interface {
	PostEvent(ev any)
}
