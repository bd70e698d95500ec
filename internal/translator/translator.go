// Package translator defines the pluggable codec contract of spec.md §6.
// The core runtime never parses PFCP Information Elements itself; it
// calls through this interface. A per-3GPP-release IE mapping is a
// large, mechanical body of work and is explicitly out of scope for the
// core (spec.md §1) — this package supplies one concrete implementation,
// WmnskTranslator, over github.com/wmnsk/go-pfcp so the runtime is usable
// out of the box, but any Translator implementation can be substituted.
package translator

import (
	"time"

	"github.com/omec-project/pfcpstack/internal/wire"
)

// Translator is the codec collaborator described in spec.md §6. Decoding
// may return an error classified by the caller into RcvdReqError/
// RcvdRspError; encoding errors are classified into EncodeReqError/
// EncodeRspError. The core never inspects Body directly — it round-trips
// it back through the same Translator that produced it.
type Translator interface {
	// GetMsgInfo parses just enough of the header to route the datagram
	// (spec.md §4.2 step 1).
	GetMsgInfo(data []byte) (wire.MsgInfo, error)

	// IsVersionSupported reports whether this Translator can decode the
	// given PFCP version.
	IsVersionSupported(version int) bool

	// EncodeReq/EncodeRsp serialize an outbound application message,
	// stamping in seqNum and, for responses, seid.
	EncodeReq(msg wire.AppMsg, seqNum uint32) ([]byte, error)
	EncodeRsp(msg wire.AppMsg, seqNum uint32, seid uint64) ([]byte, error)

	// DecodeReq/DecodeRsp parse an inbound message body given the
	// header info already extracted by GetMsgInfo.
	DecodeReq(data []byte, info wire.MsgInfo) (wire.AppMsg, error)
	DecodeRsp(data []byte, info wire.MsgInfo) (wire.AppMsg, error)

	// Heartbeat and Version-Not-Supported messages are handled entirely
	// inside the core (spec.md §4.2/§4.3) and need their own encode
	// path rather than flowing through the application.
	EncodeHeartbeatReq(seqNum uint32, recoveryTimeStamp time.Time) ([]byte, error)
	EncodeHeartbeatRsp(seqNum uint32, recoveryTimeStamp time.Time) ([]byte, error)
	DecodeHeartbeatReq(data []byte) (wire.AppMsg, error)
	DecodeHeartbeatRsp(data []byte) (wire.AppMsg, error)
	EncodeVersionNotSupportedRsp(seqNum uint32) ([]byte, error)

	// RecoveryTimeStamp extracts the peer's Recovery Time Stamp from a
	// decoded message if it carries one (Heartbeat Req/Rsp, Association
	// Setup Req/Rsp). ok is false if the message carries no such IE.
	RecoveryTimeStamp(msg wire.AppMsg) (ts time.Time, ok bool)

	// PeerFSEID extracts the peer-assigned F-SEID's SEID value from a
	// Session Establishment Request/Response, used to learn the
	// session's remote SEID (spec.md §4.3).
	PeerFSEID(msg wire.AppMsg) (seid uint64, ok bool)

	// Accepted reports whether a response's Cause IE signals success.
	// ok is false if the message carries no Cause IE.
	Accepted(msg wire.AppMsg) (accepted bool, ok bool)
}
