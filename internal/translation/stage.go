// Package translation implements the Translation stage of spec.md §4.3:
// a single-threaded, stateless-per-message encoder/decoder sitting
// between Communication and Application, and the home of heartbeat
// request/response semantics and FQ-SEID/Recovery-Time-Stamp capture.
package translation

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/translator"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// Config carries the heartbeat retransmission knobs needed to build a
// synthesized Heartbeat Request (spec.md §6).
type Config struct {
	HeartbeatT1 time.Duration
	HeartbeatN1 int
}

// Stage is the Translation stage: one goroutine running Run.
type Stage struct {
	cfg         Config
	translator  translator.Translator
	communication CommunicationSink
	app         ApplicationSink

	queue chan any
}

// New constructs a Stage. communication and app are set via the
// SetXSink methods once all three stages exist (pkg/pfcpstack wires
// them together).
func New(cfg Config, tr translator.Translator) *Stage {
	return &Stage{cfg: cfg, translator: tr, queue: make(chan any, 256)}
}

func (s *Stage) SetCommunicationSink(c CommunicationSink) { s.communication = c }
func (s *Stage) SetApplicationSink(a ApplicationSink)     { s.app = a }

// Run drives the event loop until ctx is cancelled.
func (s *Stage) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.queue:
			s.handle(ev)
		}
	}
}

func (s *Stage) handle(ev any) {
	switch e := ev.(type) {
	case sndMsgEvent:
		s.handleSndMsg(e)
	case rcvdReqEvent:
		s.handleRcvdReq(e)
	case rcvdRspEvent:
		s.handleRcvdRsp(e)
	case sndHeartbeatReqEvent:
		s.handleSndHeartbeatReq(e)
	default:
		log.WithField("type", ev).Warn("translation: unknown event")
	}
}

// PostSndMsg is the Application stage's entry point for sending a
// request or response it has already constructed (spec.md §4.3 "SndMsg").
func (s *Stage) PostSndMsg(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, msg wire.AppMsg, attempts int, retransmitMillis int64) {
	s.queue <- sndMsgEvent{local: local, remote: remote, msg: msg, attempts: attempts, retransmitMillis: retransmitMillis}
}

// PostRcvdReq implements communication.TranslationSink.
func (s *Stage) PostRcvdReq(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, session *pfcpnode.Session, data []byte, info wire.MsgInfo) {
	s.queue <- rcvdReqEvent{local: local, remote: remote, session: session, data: data, info: info}
}

// PostRcvdRsp implements communication.TranslationSink.
func (s *Stage) PostRcvdRsp(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, req *pfcpnode.ReqOut, data []byte, info wire.MsgInfo) {
	s.queue <- rcvdRspEvent{local: local, remote: remote, req: req, data: data, info: info}
}

// PostSndHeartbeatReq implements communication.TranslationSink.
func (s *Stage) PostSndHeartbeatReq(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode) {
	s.queue <- sndHeartbeatReqEvent{local: local, remote: remote}
}

func (s *Stage) postApp(ev any) {
	if s.app != nil {
		s.app.PostEvent(ev)
	}
}
