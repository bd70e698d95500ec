package translation

import (
	log "github.com/sirupsen/logrus"

	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// handleSndMsg implements spec.md §4.3's "SndMsg": encode the
// application's outbound message and forward it to Communication.
func (s *Stage) handleSndMsg(e sndMsgEvent) {
	if e.msg.IsReq {
		data, err := s.translator.EncodeReq(e.msg, e.msg.SeqNum)
		if err != nil {
			s.postApp(EncodeReqError{Local: e.local, Remote: e.remote, Msg: e.msg, Err: err})
			return
		}
		s.communication.PostSndReq(&pfcpnode.ReqOut{
			Local: e.local, Remote: e.remote,
			Class: e.msg.Class, Type: e.msg.Type, SeqNum: e.msg.SeqNum,
			Bytes: data, Msg: e.msg, IsHeartbeat: e.isHeartbeat,
			AttemptsRemaining: e.attempts, RetransmitMillis: e.retransmitMillis,
		})
		return
	}

	data, err := s.translator.EncodeRsp(e.msg, e.msg.SeqNum, e.msg.Seid)
	if err != nil {
		s.postApp(EncodeRspError{Local: e.local, Remote: e.remote, Msg: e.msg, Err: err})
		return
	}
	s.communication.PostSndRsp(e.local, e.remote, e.msg.SeqNum, data)
}

// handleRcvdReq implements spec.md §4.3's "RcvdReq".
func (s *Stage) handleRcvdReq(e rcvdReqEvent) {
	msg, err := s.translator.DecodeReq(e.data, e.info)
	if err != nil {
		s.communication.NotifyRcvdReqError(e.local, e.remote, e.info.SeqNum, err)
		return
	}

	switch e.info.Type {
	case wire.MsgTypeHeartbeatRequest:
		s.observeRestart(e.remote, msg)
		rsp, err := s.translator.EncodeHeartbeatRsp(e.info.SeqNum, e.local.StartAt)
		if err != nil {
			log.WithError(err).Warn("translation: failed to encode heartbeat response")
			return
		}
		s.communication.PostSndRsp(e.local, e.remote, e.info.SeqNum, rsp)
		return // handled entirely in the core, never reaches the application.

	case wire.MsgTypeAssociationSetupRequest:
		s.observeRestart(e.remote, msg)

	case wire.MsgTypeSessionEstablishmentRequest:
		seid, ok := s.translator.PeerFSEID(msg)
		if !ok {
			s.communication.NotifyRcvdReqError(e.local, e.remote, e.info.SeqNum, errMissingPeerFSEID)
			return
		}
		if e.session != nil {
			if err := e.session.SetRemoteSeid(seid); err != nil {
				log.WithError(err).Warn("translation: remote seid already set")
			} else {
				e.remote.PutSession(seid, e.session)
			}
		}
	}

	s.postApp(RcvdReq{Local: e.local, Remote: e.remote, Session: e.session, Msg: msg})
}

// handleRcvdRsp implements spec.md §4.3's "RcvdRsp".
func (s *Stage) handleRcvdRsp(e rcvdRspEvent) {
	msg, err := s.translator.DecodeRsp(e.data, e.info)
	if err != nil {
		s.communication.NotifyRcvdRspError(e.local, e.remote, e.info.SeqNum, err)
		return
	}

	switch e.info.Type {
	case wire.MsgTypeHeartbeatResponse:
		s.observeRestart(e.remote, msg)
		return // synthesized by the core; never reaches the application.

	case wire.MsgTypeAssociationSetupResponse:
		s.observeRestart(e.remote, msg)

	case wire.MsgTypeSessionEstablishmentResponse:
		if accepted, ok := s.translator.Accepted(msg); ok && accepted {
			if seid, ok2 := s.translator.PeerFSEID(msg); ok2 {
				if session, ok3 := e.local.GetSession(e.req.Msg.Seid); ok3 {
					if err := session.SetRemoteSeid(seid); err != nil {
						log.WithError(err).Warn("translation: remote seid already set")
					} else {
						e.remote.PutSession(seid, session)
					}
				}
			}
		}
	}

	s.postApp(RcvdRsp{Local: e.local, Remote: e.remote, ReqMsg: e.req.Msg, Msg: msg})
}

// handleSndHeartbeatReq implements spec.md §4.3's "SndHeartbeatReq":
// encode and forward to Communication.
func (s *Stage) handleSndHeartbeatReq(e sndHeartbeatReqEvent) {
	seqNum := e.local.AllocSeqNbr()
	data, err := s.translator.EncodeHeartbeatReq(seqNum, e.local.StartAt)
	if err != nil {
		log.WithError(err).Warn("translation: failed to encode heartbeat request")
		return
	}
	s.communication.PostSndReq(&pfcpnode.ReqOut{
		Local: e.local, Remote: e.remote,
		Class: wire.ClassNode, Type: wire.MsgTypeHeartbeatRequest, SeqNum: seqNum,
		Bytes: data, Msg: wire.AppMsg{Class: wire.ClassNode, Type: wire.MsgTypeHeartbeatRequest, IsReq: true, SeqNum: seqNum},
		IsHeartbeat:       true,
		AttemptsRemaining: s.cfg.HeartbeatN1,
		RetransmitMillis:  s.cfg.HeartbeatT1.Milliseconds(),
	})
}

func (s *Stage) observeRestart(remote *pfcpnode.RemoteNode, msg wire.AppMsg) {
	ts, ok := s.translator.RecoveryTimeStamp(msg)
	if !ok {
		return
	}
	prior, first, restarted := remote.ObserveStartAt(ts)
	if first || !restarted {
		return
	}
	s.postApp(pfcpnode.RemoteNodeRestart{Remote: remote, NewStartAt: ts, PriorStartAt: prior})
}
