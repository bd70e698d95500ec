package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omec-project/pfcpstack/internal/communication"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/translation"
)

type recordingHandler struct {
	BaseHandler
	mu        sync.Mutex
	rcvdReqs  int
	timeouts  int
	restarts  int
}

func (h *recordingHandler) OnRcvdReq(translation.RcvdReq) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rcvdReqs++
}
func (h *recordingHandler) OnReqTimeout(communication.ReqTimeout) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeouts++
}
func (h *recordingHandler) OnRemoteNodeRestart(pfcpnode.RemoteNodeRestart) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.restarts++
}

func (h *recordingHandler) counts() (rcvdReqs, timeouts, restarts int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rcvdReqs, h.timeouts, h.restarts
}

func TestStageDispatchesEventsByType(t *testing.T) {
	handler := &recordingHandler{}
	stage := New(Config{Workers: 2}, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- stage.Run(ctx) }()

	stage.PostEvent(translation.RcvdReq{})
	stage.PostEvent(communication.ReqTimeout{})
	stage.PostEvent(pfcpnode.RemoteNodeRestart{})

	require.Eventually(t, func() bool {
		r, to, rs := handler.counts()
		return r == 1 && to == 1 && rs == 1
	}, time.Second, 2*time.Millisecond)

	cancel()
	<-done
}

func TestStageClampsWorkersToAtLeastOne(t *testing.T) {
	stage := New(Config{Workers: 0}, &recordingHandler{})
	require.Equal(t, 1, stage.cfg.Workers)
}

var _ Handler = (*recordingHandler)(nil)
