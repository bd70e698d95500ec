// Package wire holds the message-class/message-type vocabulary and the
// tagged-variant application message shared by every stage (spec.md §6,
// §9 "Deep inheritance of message types" — recast here as a message
// class, a numeric type, and an opaque request/response body produced
// by a Translator).
package wire

import "fmt"

// MsgClass distinguishes node-scoped messages (no SEID) from
// session-scoped ones (spec.md §3 "Node class vs Session class").
type MsgClass uint8

const (
	ClassUnknown MsgClass = iota
	ClassNode
	ClassSession
)

func (c MsgClass) String() string {
	switch c {
	case ClassNode:
		return "Node"
	case ClassSession:
		return "Session"
	default:
		return "Unknown"
	}
}

// MsgType is the 8-bit PFCP message type field (spec.md §6).
type MsgType = uint8

// Message types referenced by the core state machines (spec.md §6).
const (
	MsgTypeHeartbeatRequest             MsgType = 1
	MsgTypeHeartbeatResponse            MsgType = 2
	MsgTypePFDManagementRequest         MsgType = 3
	MsgTypePFDManagementResponse        MsgType = 4
	MsgTypeAssociationSetupRequest      MsgType = 5
	MsgTypeAssociationSetupResponse     MsgType = 6
	MsgTypeAssociationUpdateRequest     MsgType = 7
	MsgTypeAssociationUpdateResponse    MsgType = 8
	MsgTypeAssociationReleaseRequest    MsgType = 9
	MsgTypeAssociationReleaseResponse   MsgType = 10
	MsgTypeVersionNotSupportedResponse  MsgType = 11
	MsgTypeNodeReportRequest            MsgType = 12
	MsgTypeNodeReportResponse           MsgType = 13
	MsgTypeSessionSetDeletionRequest    MsgType = 14
	MsgTypeSessionSetDeletionResponse   MsgType = 15
	MsgTypeSessionEstablishmentRequest  MsgType = 50
	MsgTypeSessionEstablishmentResponse MsgType = 51
	MsgTypeSessionModificationRequest   MsgType = 52
	MsgTypeSessionModificationResponse  MsgType = 53
	MsgTypeSessionDeletionRequest       MsgType = 54
	MsgTypeSessionDeletionResponse      MsgType = 55
	MsgTypeSessionReportRequest         MsgType = 56
	MsgTypeSessionReportResponse        MsgType = 57
)

// ProtocolVersion is the only PFCP version this stack speaks (spec.md §6).
const ProtocolVersion = 1

var typeNames = map[MsgType]string{
	MsgTypeHeartbeatRequest:             "HeartbeatRequest",
	MsgTypeHeartbeatResponse:            "HeartbeatResponse",
	MsgTypePFDManagementRequest:         "PFDManagementRequest",
	MsgTypePFDManagementResponse:        "PFDManagementResponse",
	MsgTypeAssociationSetupRequest:      "AssociationSetupRequest",
	MsgTypeAssociationSetupResponse:     "AssociationSetupResponse",
	MsgTypeAssociationUpdateRequest:     "AssociationUpdateRequest",
	MsgTypeAssociationUpdateResponse:    "AssociationUpdateResponse",
	MsgTypeAssociationReleaseRequest:    "AssociationReleaseRequest",
	MsgTypeAssociationReleaseResponse:   "AssociationReleaseResponse",
	MsgTypeVersionNotSupportedResponse:  "VersionNotSupportedResponse",
	MsgTypeNodeReportRequest:            "NodeReportRequest",
	MsgTypeNodeReportResponse:           "NodeReportResponse",
	MsgTypeSessionSetDeletionRequest:    "SessionSetDeletionRequest",
	MsgTypeSessionSetDeletionResponse:   "SessionSetDeletionResponse",
	MsgTypeSessionEstablishmentRequest:  "SessionEstablishmentRequest",
	MsgTypeSessionEstablishmentResponse: "SessionEstablishmentResponse",
	MsgTypeSessionModificationRequest:   "SessionModificationRequest",
	MsgTypeSessionModificationResponse:  "SessionModificationResponse",
	MsgTypeSessionDeletionRequest:       "SessionDeletionRequest",
	MsgTypeSessionDeletionResponse:      "SessionDeletionResponse",
	MsgTypeSessionReportRequest:         "SessionReportRequest",
	MsgTypeSessionReportResponse:        "SessionReportResponse",
}

// MessageTypeName returns a human-readable name for logging, grounded on
// the teacher's internal/pfcp.MessageTypeName.
func MessageTypeName(t MsgType) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", t)
}

var sessionClassTypes = map[MsgType]bool{
	MsgTypeSessionEstablishmentRequest:  true,
	MsgTypeSessionEstablishmentResponse: true,
	MsgTypeSessionModificationRequest:   true,
	MsgTypeSessionModificationResponse:  true,
	MsgTypeSessionDeletionRequest:       true,
	MsgTypeSessionDeletionResponse:      true,
	MsgTypeSessionReportRequest:         true,
	MsgTypeSessionReportResponse:        true,
}

// ClassOf classifies a message type as Node- or Session-scoped, grounded
// on the teacher's internal/pfcp.IsSessionMessage.
func ClassOf(t MsgType) MsgClass {
	if sessionClassTypes[t] {
		return ClassSession
	}
	if _, ok := typeNames[t]; ok {
		return ClassNode
	}
	return ClassUnknown
}

// IsRequest reports whether t is a request-side message type.
func IsRequest(t MsgType) bool {
	switch t {
	case MsgTypeHeartbeatRequest,
		MsgTypePFDManagementRequest,
		MsgTypeAssociationSetupRequest,
		MsgTypeAssociationUpdateRequest,
		MsgTypeAssociationReleaseRequest,
		MsgTypeNodeReportRequest,
		MsgTypeSessionSetDeletionRequest,
		MsgTypeSessionEstablishmentRequest,
		MsgTypeSessionModificationRequest,
		MsgTypeSessionDeletionRequest,
		MsgTypeSessionReportRequest:
		return true
	default:
		return false
	}
}

// MsgInfo is the result of a Translator.GetMsgInfo header-only parse
// (spec.md §6 "getMsgInfo(bytes)").
type MsgInfo struct {
	Version int
	IsReq   bool
	Class   MsgClass
	Type    MsgType
	SeqNum  uint32
	HasSeid bool
	Seid    uint64
}

// AppMsg is the tagged-variant application message exchanged between
// stages: a message class/type pair, routing metadata, and an opaque
// Translator-specific body (the "typed access via a small per-message-type
// accessor set produced by the codec" of spec.md §9).
type AppMsg struct {
	Class  MsgClass
	Type   MsgType
	IsReq  bool
	SeqNum uint32
	Seid   uint64
	Body   any
}
