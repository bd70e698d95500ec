package translation

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/translator"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// decodeErrTranslator/encodeErrTranslator wrap a working Translator and
// force a single method to fail, to exercise the decode/encode error
// paths without complicating fakeTranslator's happy-path fields.
type decodeErrTranslator struct{ translator.Translator }

func (decodeErrTranslator) DecodeReq(data []byte, info wire.MsgInfo) (wire.AppMsg, error) {
	return wire.AppMsg{}, errors.New("decode boom")
}

type encodeErrTranslator struct{ translator.Translator }

func (encodeErrTranslator) EncodeReq(msg wire.AppMsg, seqNum uint32) ([]byte, error) {
	return nil, errors.New("encode boom")
}

// fakeTranslator is a scripted Translator stub: encode/decode are
// identity-ish, and the three semantic accessors (RecoveryTimeStamp,
// PeerFSEID, Accepted) are driven by fields set up per-test so these
// tests exercise Stage's dispatch logic without a real PFCP codec.
type fakeTranslator struct {
	recoveryTS map[wire.MsgType]time.Time
	peerFseid  uint64
	hasFseid   bool
	accepted   bool
}

func (f *fakeTranslator) GetMsgInfo(data []byte) (wire.MsgInfo, error) { return wire.MsgInfo{}, nil }
func (f *fakeTranslator) IsVersionSupported(v int) bool                { return v == wire.ProtocolVersion }

func (f *fakeTranslator) EncodeReq(msg wire.AppMsg, seqNum uint32) ([]byte, error) {
	return []byte{byte(msg.Type)}, nil
}
func (f *fakeTranslator) EncodeRsp(msg wire.AppMsg, seqNum uint32, seid uint64) ([]byte, error) {
	return []byte{byte(msg.Type)}, nil
}
func (f *fakeTranslator) DecodeReq(data []byte, info wire.MsgInfo) (wire.AppMsg, error) {
	return wire.AppMsg{Class: info.Class, Type: info.Type, IsReq: true, SeqNum: info.SeqNum, Seid: info.Seid}, nil
}
func (f *fakeTranslator) DecodeRsp(data []byte, info wire.MsgInfo) (wire.AppMsg, error) {
	return wire.AppMsg{Class: info.Class, Type: info.Type, SeqNum: info.SeqNum, Seid: info.Seid}, nil
}
func (f *fakeTranslator) EncodeHeartbeatReq(seqNum uint32, ts time.Time) ([]byte, error) {
	return []byte{byte(wire.MsgTypeHeartbeatRequest)}, nil
}
func (f *fakeTranslator) EncodeHeartbeatRsp(seqNum uint32, ts time.Time) ([]byte, error) {
	return []byte{byte(wire.MsgTypeHeartbeatResponse)}, nil
}
func (f *fakeTranslator) DecodeHeartbeatReq(data []byte) (wire.AppMsg, error) {
	return wire.AppMsg{Class: wire.ClassNode, Type: wire.MsgTypeHeartbeatRequest}, nil
}
func (f *fakeTranslator) DecodeHeartbeatRsp(data []byte) (wire.AppMsg, error) {
	return wire.AppMsg{Class: wire.ClassNode, Type: wire.MsgTypeHeartbeatResponse}, nil
}
func (f *fakeTranslator) EncodeVersionNotSupportedRsp(seqNum uint32) ([]byte, error) {
	return []byte{byte(wire.MsgTypeVersionNotSupportedResponse)}, nil
}
func (f *fakeTranslator) RecoveryTimeStamp(msg wire.AppMsg) (time.Time, bool) {
	ts, ok := f.recoveryTS[msg.Type]
	return ts, ok
}
func (f *fakeTranslator) PeerFSEID(msg wire.AppMsg) (uint64, bool) { return f.peerFseid, f.hasFseid }
func (f *fakeTranslator) Accepted(msg wire.AppMsg) (bool, bool)    { return f.accepted, true }

var _ translator.Translator = (*fakeTranslator)(nil)

type recordingCommunication struct {
	mu       sync.Mutex
	sentReqs []*pfcpnode.ReqOut
	sentRsps []sndRspCall
	reqErrs  []uint32
	rspErrs  []uint32
}

type sndRspCall struct {
	local  *pfcpnode.LocalNode
	remote *pfcpnode.RemoteNode
	seqNum uint32
	data   []byte
}

func (c *recordingCommunication) PostSndReq(req *pfcpnode.ReqOut) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentReqs = append(c.sentReqs, req)
}
func (c *recordingCommunication) PostSndRsp(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentRsps = append(c.sentRsps, sndRspCall{local, remote, seqNum, data})
}
func (c *recordingCommunication) NotifyRcvdReqError(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqErrs = append(c.reqErrs, seqNum)
}
func (c *recordingCommunication) NotifyRcvdRspError(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rspErrs = append(c.rspErrs, seqNum)
}

func (c *recordingCommunication) snapshot() recordingCommunication {
	c.mu.Lock()
	defer c.mu.Unlock()
	return recordingCommunication{sentReqs: append([]*pfcpnode.ReqOut{}, c.sentReqs...), sentRsps: append([]sndRspCall{}, c.sentRsps...)}
}

type recordingApp struct {
	mu     sync.Mutex
	events []any
}

func (a *recordingApp) PostEvent(ev any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}
func (a *recordingApp) snapshot() []any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]any, len(a.events))
	copy(out, a.events)
	return out
}

func mustEndpoint(t *testing.T, s string) pfcpaddr.Endpoint {
	t.Helper()
	e, err := pfcpaddr.NewEndpoint(net.ParseIP(s))
	require.NoError(t, err)
	return e
}

func newTestStage(tr *fakeTranslator) (*Stage, *recordingCommunication, *recordingApp) {
	stage := New(Config{HeartbeatT1: 30 * time.Millisecond, HeartbeatN1: 2}, tr)
	comm := &recordingCommunication{}
	app := &recordingApp{}
	stage.SetCommunicationSink(comm)
	stage.SetApplicationSink(app)
	return stage, comm, app
}

func TestHandleRcvdReqHeartbeatNeverReachesApplication(t *testing.T) {
	stage, comm, app := newTestStage(&fakeTranslator{})
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	stage.handleRcvdReq(rcvdReqEvent{
		local: local, remote: remote,
		data: []byte{1},
		info: wire.MsgInfo{Class: wire.ClassNode, Type: wire.MsgTypeHeartbeatRequest, SeqNum: 5},
	})

	require.Empty(t, app.snapshot())
	snap := comm.snapshot()
	require.Len(t, snap.sentRsps, 1)
	require.Equal(t, uint32(5), snap.sentRsps[0].seqNum)
}

func TestHandleRcvdReqHeartbeatRestartSurfacedButNotDelivered(t *testing.T) {
	now := time.Unix(2000, 0)
	tr := &fakeTranslator{recoveryTS: map[wire.MsgType]time.Time{wire.MsgTypeHeartbeatRequest: now}}
	stage, _, app := newTestStage(tr)
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	// first observation: establishes the baseline, no restart event.
	remote.ObserveStartAt(time.Unix(1000, 0))

	stage.handleRcvdReq(rcvdReqEvent{
		local: local, remote: remote,
		data: []byte{1},
		info: wire.MsgInfo{Class: wire.ClassNode, Type: wire.MsgTypeHeartbeatRequest, SeqNum: 6},
	})

	events := app.snapshot()
	require.Len(t, events, 1)
	restart, ok := events[0].(pfcpnode.RemoteNodeRestart)
	require.True(t, ok)
	require.True(t, restart.NewStartAt.Equal(now))
}

func TestHandleRcvdReqSessionEstablishmentCapturesPeerFseid(t *testing.T) {
	tr := &fakeTranslator{peerFseid: 777, hasFseid: true}
	stage, _, app := newTestStage(tr)
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)
	session := local.CreateSession(remote)

	stage.handleRcvdReq(rcvdReqEvent{
		local: local, remote: remote, session: session,
		data: []byte{1},
		info: wire.MsgInfo{Class: wire.ClassSession, Type: wire.MsgTypeSessionEstablishmentRequest, SeqNum: 10, Seid: session.LocalSeid},
	})

	require.Equal(t, uint64(777), session.RemoteSeid())
	got, ok := remote.Session(777)
	require.True(t, ok)
	require.Same(t, session, got)

	events := app.snapshot()
	require.Len(t, events, 1)
	_, ok = events[0].(RcvdReq)
	require.True(t, ok)
}

func TestHandleRcvdReqSessionEstablishmentMissingFseidReportsError(t *testing.T) {
	tr := &fakeTranslator{hasFseid: false}
	stage, comm, app := newTestStage(tr)
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)
	session := local.CreateSession(remote)

	stage.handleRcvdReq(rcvdReqEvent{
		local: local, remote: remote, session: session,
		data: []byte{1},
		info: wire.MsgInfo{Class: wire.ClassSession, Type: wire.MsgTypeSessionEstablishmentRequest, SeqNum: 11},
	})

	require.Empty(t, app.snapshot())
	snap := comm.snapshot()
	require.Empty(t, snap.sentRsps)
	require.Equal(t, []uint32{11}, comm.reqErrs)
}

func TestHandleRcvdRspSessionEstablishmentAcceptedRegistersSession(t *testing.T) {
	tr := &fakeTranslator{peerFseid: 888, hasFseid: true, accepted: true}
	stage, _, app := newTestStage(tr)
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)
	session := local.CreateSession(remote)

	req := &pfcpnode.ReqOut{
		Local: local, Remote: remote, Type: wire.MsgTypeSessionEstablishmentRequest, SeqNum: 20,
		Msg: wire.AppMsg{Class: wire.ClassSession, Type: wire.MsgTypeSessionEstablishmentRequest, SeqNum: 20, Seid: session.LocalSeid},
	}

	stage.handleRcvdRsp(rcvdRspEvent{
		local: local, remote: remote, req: req,
		data: []byte{1},
		info: wire.MsgInfo{Class: wire.ClassSession, Type: wire.MsgTypeSessionEstablishmentResponse, SeqNum: 20, Seid: session.LocalSeid},
	})

	require.Equal(t, uint64(888), session.RemoteSeid())
	got, ok := remote.Session(888)
	require.True(t, ok)
	require.Same(t, session, got)

	events := app.snapshot()
	require.Len(t, events, 1)
	rsp, ok := events[0].(RcvdRsp)
	require.True(t, ok)
	require.Equal(t, uint32(20), rsp.ReqMsg.SeqNum)
}

func TestHandleRcvdRspHeartbeatResponseNeverDelivered(t *testing.T) {
	stage, _, app := newTestStage(&fakeTranslator{})
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	req := &pfcpnode.ReqOut{Local: local, Remote: remote, Type: wire.MsgTypeHeartbeatRequest, SeqNum: 30}
	stage.handleRcvdRsp(rcvdRspEvent{
		local: local, remote: remote, req: req,
		data: []byte{1},
		info: wire.MsgInfo{Class: wire.ClassNode, Type: wire.MsgTypeHeartbeatResponse, SeqNum: 30},
	})

	require.Empty(t, app.snapshot())
}

func TestHandleRcvdReqDecodeErrorNotifiesCommunicationOnly(t *testing.T) {
	stage, comm, app := newTestStage(&fakeTranslator{})
	stage.translator = decodeErrTranslator{stage.translator}
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	stage.handleRcvdReq(rcvdReqEvent{
		local: local, remote: remote,
		data: []byte{1},
		info: wire.MsgInfo{Class: wire.ClassSession, Type: wire.MsgTypeSessionModificationRequest, SeqNum: 40},
	})

	require.Empty(t, app.snapshot())
	require.Equal(t, []uint32{40}, comm.reqErrs)
}

func TestHandleSndMsgEncodeErrorSurfacesToApplication(t *testing.T) {
	stage, comm, app := newTestStage(&fakeTranslator{})
	stage.translator = encodeErrTranslator{stage.translator}
	local := pfcpnode.NewLocalNode(mustEndpoint(t, "10.0.0.1"), pfcpnode.Config{NbrActivityWnds: 10, SentVectorLen: 2}, nil)
	remote, _, err := local.CreateRemoteNode(mustEndpoint(t, "10.0.0.2"))
	require.NoError(t, err)

	stage.handleSndMsg(sndMsgEvent{
		local: local, remote: remote,
		msg: wire.AppMsg{Class: wire.ClassSession, Type: wire.MsgTypeSessionModificationRequest, IsReq: true, SeqNum: 50},
	})

	snap := comm.snapshot()
	require.Empty(t, snap.sentReqs)
	events := app.snapshot()
	require.Len(t, events, 1)
	_, ok := events[0].(EncodeReqError)
	require.True(t, ok)
}
