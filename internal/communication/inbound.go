package communication

import (
	log "github.com/sirupsen/logrus"

	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// resolveRemote implements spec.md §4.2 step 2/5's auto-creation of a
// RemoteNode for an unknown inbound peer.
func (s *Stage) resolveRemote(local *pfcpnode.LocalNode, src pfcpaddr.Endpoint) (*pfcpnode.RemoteNode, error) {
	if r, ok := local.RemoteNode(src); ok {
		return r, nil
	}
	remote, previous, err := local.CreateRemoteNode(src)
	if err != nil {
		return nil, err
	}
	s.postAppEvent(pfcpnode.RemoteNodeStateChange{Remote: remote, Previous: previous, Current: pfcpnode.RemoteStarted})
	return remote, nil
}

// handleInbound implements spec.md §4.2's inbound datagram handling.
func (s *Stage) handleInbound(e inboundDatagramEvent) {
	info, err := s.translator.GetMsgInfo(e.data)
	if err != nil {
		log.WithError(err).WithField("src", e.src).Debug("communication: dropping malformed datagram")
		return
	}

	remote, err := s.resolveRemote(e.local, e.src)
	if err != nil {
		log.WithError(err).WithField("src", e.src).Warn("communication: dropping datagram, could not resolve remote")
		return
	}
	remote.RecordInbound(info.Type)

	if !s.translator.IsVersionSupported(info.Version) {
		data, err := s.translator.EncodeVersionNotSupportedRsp(info.SeqNum)
		if err != nil {
			log.WithError(err).Warn("communication: failed to encode version-not-supported response")
			return
		}
		if err := s.send(e.local, remote, data); err != nil {
			log.WithError(err).Warn("communication: failed to send version-not-supported response")
		}
		return
	}

	if info.IsReq {
		s.handleInboundRequest(e.local, remote, info, e.data)
		return
	}
	s.handleInboundResponse(e.local, remote, info, e.data)
}

func (s *Stage) handleInboundRequest(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, info wire.MsgInfo, data []byte) {
	if remote.HasReceived(info.SeqNum) {
		log.WithFields(log.Fields{"remote": remote.Address, "seq_num": info.SeqNum}).Debug("communication: dropping duplicate request")
		return
	}

	var session *pfcpnode.Session
	if info.Class == wire.ClassSession {
		if info.Type == wire.MsgTypeSessionEstablishmentRequest {
			session = local.CreateSession(remote)
		} else {
			sess, ok := local.GetSession(info.Seid)
			if !ok {
				log.WithFields(log.Fields{"remote": remote.Address, "seid": info.Seid}).Debug("communication: dropping request for unknown session")
				return
			}
			session = sess
		}
	}

	tag := s.currentRspTag()
	remote.PutReceived(pfcpnode.RcvdReq{SeqNum: info.SeqNum, Class: info.Class, Type: info.Type, RspWndTag: tag})

	if s.translation != nil {
		s.translation.PostRcvdReq(local, remote, session, data, info)
	}
}

func (s *Stage) handleInboundResponse(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, info wire.MsgInfo, data []byte) {
	req, ok := local.OutReq(info.SeqNum)
	if !ok {
		log.WithFields(log.Fields{"remote": remote.Address, "seq_num": info.SeqNum}).Debug("communication: dropping response for unknown/expired request")
		return
	}
	req.RspWndTag = s.currentRspTag()
	s.timers.UnregisterTimer(req.TimerID)

	if s.translation != nil {
		s.translation.PostRcvdRsp(local, remote, req, data, info)
	}
}

func (s *Stage) currentRspTag() pfcpnode.RspWndTag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rspTag
}
