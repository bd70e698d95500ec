package communication

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/omec-project/pfcpstack/internal/pfcpnode"
)

func (s *Stage) postAppEvent(ev any) {
	if s.app != nil {
		s.app.PostEvent(ev)
	}
}

// handleSndReq implements spec.md §4.2's "Outbound request" step.
func (s *Stage) handleSndReq(e sndReqEvent) {
	req := e.req
	if !req.Local.PutOutReq(req) {
		log.WithField("seq_num", req.SeqNum).Warn("communication: sequence number already in flight")
		s.postAppEvent(SndReqError{Local: req.Local, Remote: req.Remote, Msg: req.Msg, Err: errSeqNumReused(req.SeqNum)})
		return
	}
	s.sendWithRetry(req)
}

// sendWithRetry implements spec.md §4.2's "Send-with-retry" pseudocode.
func (s *Stage) sendWithRetry(req *pfcpnode.ReqOut) {
	if req.AttemptsRemaining > 0 {
		req.AttemptsRemaining--
		if err := s.send(req.Local, req.Remote, req.Bytes); err != nil {
			log.WithError(err).WithField("remote", req.Remote.Address).Warn("communication: send failed, will still retry")
		}
		req.Remote.Stats.RecordSent(req.Type, req.AttemptIndex)
		req.AttemptIndex++

		req.TimerID = s.timers.RegisterTimer(
			time.Duration(req.RetransmitMillis)*time.Millisecond,
			reqTimeoutTimerEvent{local: req.Local, seqNum: req.SeqNum},
			s,
		)
		return
	}

	req.Local.DeleteOutReq(req.SeqNum)
	if req.IsHeartbeat {
		previous := req.Remote.SetState(pfcpnode.RemoteFailed)
		s.postAppEvent(pfcpnode.RemoteNodeStateChange{Remote: req.Remote, Previous: previous, Current: pfcpnode.RemoteFailed})
		return
	}
	req.Remote.Stats.RecordTimeout(req.Type)
	s.postAppEvent(ReqTimeout{Local: req.Local, Remote: req.Remote, Msg: req.Msg})
}

// handleReqTimeoutTimer fires when a T1 timer expires. The outbound-request
// entry may already be answered (a response tagged it with a response
// window) or gone (the response-window GC reaped it) — in either case this
// is a no-op (spec.md §5 "Cancellation & timeouts").
func (s *Stage) handleReqTimeoutTimer(e reqTimeoutTimerEvent) {
	req, ok := e.local.OutReq(e.seqNum)
	if !ok || req.RspWndTag != 0 {
		return
	}
	s.sendWithRetry(req)
}

// handleSndRsp implements spec.md §4.2's "Outbound response" step.
func (s *Stage) handleSndRsp(e sndRspEvent) {
	if !e.remote.TouchReceived(e.seqNum, s.currentRspTag()) {
		log.WithFields(log.Fields{"remote": e.remote.Address, "seq_num": e.seqNum}).Debug("communication: received-request entry already reaped")
		s.postAppEvent(SndRspError{Local: e.local, Remote: e.remote, Err: errReceivedEntryGone(e.seqNum)})
		return
	}
	if err := s.send(e.local, e.remote, e.data); err != nil {
		log.WithError(err).WithField("remote", e.remote.Address).Warn("communication: failed to send response")
	}
}

// tickActivity implements spec.md §4.2's "Activity-window tick".
func (s *Stage) tickActivity() {
	for _, local := range s.snapshotLocals() {
		for _, remote := range local.RemoteNodes() {
			if remote.State() != pfcpnode.RemoteStarted {
				continue
			}
			if remote.Activity.Rotate() {
				remote.Activity.PreIncrement()
				if s.translation != nil {
					s.translation.PostSndHeartbeatReq(local, remote)
				}
			}
		}
	}
}

// tickResponseWindow implements spec.md §4.2's "Response-window tick".
func (s *Stage) tickResponseWindow() {
	s.mu.Lock()
	next := pfcpnode.RspWndTag(1)
	if s.rspTag == 1 {
		next = 2
	}
	s.rspTag = next
	s.mu.Unlock()

	for _, local := range s.snapshotLocals() {
		for _, removed := range local.SweepOutReqs(next) {
			s.timers.UnregisterTimer(removed.TimerID)
		}
		for _, remote := range local.RemoteNodes() {
			remote.SweepReceived(next)
		}
	}
}

func (s *Stage) snapshotLocals() []*pfcpnode.LocalNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*pfcpnode.LocalNode, 0, len(s.locals))
	for _, b := range s.locals {
		out = append(out, b.node)
	}
	return out
}

// handleDisconnect implements spec.md §4.2's "Disconnect": transition to
// Stopping, then drain sessions one at a time.
func (s *Stage) handleDisconnect(e disconnectEvent) {
	e.remote.SetState(pfcpnode.RemoteStopping)
	s.queue <- delNxtRmtSessionEvent{remote: e.remote}
}

func (s *Stage) handleDelNxtRmtSession(e delNxtRmtSessionEvent) {
	seid, ok := e.remote.AnySessionSeid()
	if !ok {
		previous := e.remote.SetState(pfcpnode.RemoteStopped)
		s.postAppEvent(pfcpnode.RemoteNodeStateChange{Remote: e.remote, Previous: previous, Current: pfcpnode.RemoteStopped})
		return
	}
	if session, ok := e.remote.Session(seid); ok {
		session.Local.DeleteSession(session.LocalSeid)
	}
	e.remote.DeleteSession(seid)
	s.queue <- delNxtRmtSessionEvent{remote: e.remote}
}

// NotifyRcvdReqError implements translation.CommunicationSink: a decode
// failure drops the received-request bookkeeping for seqNum without
// surfacing anything to the application (spec.md §7 "Decode errors").
func (s *Stage) NotifyRcvdReqError(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, err error) {
	log.WithError(err).WithFields(log.Fields{"remote": remote.Address, "seq_num": seqNum}).Debug("communication: dropping request, decode failed")
	remote.DeleteReceived(seqNum)
}

// NotifyRcvdRspError implements translation.CommunicationSink for
// response decode failures. The outbound-request entry was already
// tagged with the response window when the response was matched, so the
// response-window tick reaps it; this only logs.
func (s *Stage) NotifyRcvdRspError(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, err error) {
	log.WithError(err).WithFields(log.Fields{"remote": remote.Address, "seq_num": seqNum}).Debug("communication: response decode failed")
}

func (s *Stage) handleDelSession(e delSessionEvent) {
	sess := e.session
	sess.Local.DeleteSession(sess.LocalSeid)
	if seid := sess.RemoteSeid(); seid != 0 {
		sess.Remote.DeleteSession(seid)
	}
}
