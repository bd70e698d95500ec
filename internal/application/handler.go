// Package application implements the Application stage of spec.md §4.4:
// a pool of worker goroutines draining a shared event queue and
// dispatching to a pluggable Handler, grounded on
// original_source/epfcp.h's ApplicationWorkGroup/ApplicationWorker pair.
package application

import (
	"github.com/omec-project/pfcpstack/internal/communication"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/translation"
)

// Handler is the callback set a consumer implements to react to every
// event this runtime surfaces to the application, one method per
// ApplicationWorker::onXxx of original_source/epfcp.h.
type Handler interface {
	OnRcvdReq(ev translation.RcvdReq)
	OnRcvdRsp(ev translation.RcvdRsp)
	OnReqTimeout(ev communication.ReqTimeout)
	OnLocalNodeStateChange(ev pfcpnode.LocalNodeStateChange)
	OnRemoteNodeStateChange(ev pfcpnode.RemoteNodeStateChange)
	OnRemoteNodeRestart(ev pfcpnode.RemoteNodeRestart)
	OnSndReqError(ev communication.SndReqError)
	OnSndRspError(ev communication.SndRspError)
	OnEncodeReqError(ev translation.EncodeReqError)
	OnEncodeRspError(ev translation.EncodeRspError)
}

// BaseHandler is a no-op Handler, embedded by consumers who only care
// about a handful of events (spec.md §4.4 "a handler need not implement
// every callback").
type BaseHandler struct{}

func (BaseHandler) OnRcvdReq(translation.RcvdReq)                             {}
func (BaseHandler) OnRcvdRsp(translation.RcvdRsp)                             {}
func (BaseHandler) OnReqTimeout(communication.ReqTimeout)                     {}
func (BaseHandler) OnLocalNodeStateChange(pfcpnode.LocalNodeStateChange)      {}
func (BaseHandler) OnRemoteNodeStateChange(pfcpnode.RemoteNodeStateChange)    {}
func (BaseHandler) OnRemoteNodeRestart(pfcpnode.RemoteNodeRestart)            {}
func (BaseHandler) OnSndReqError(communication.SndReqError)                  {}
func (BaseHandler) OnSndRspError(communication.SndRspError)                  {}
func (BaseHandler) OnEncodeReqError(translation.EncodeReqError)              {}
func (BaseHandler) OnEncodeRspError(translation.EncodeRspError)              {}

var _ Handler = BaseHandler{}
