package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/omec-project/pfcpstack/internal/communication"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/translation"
)

// Config controls the worker pool size (spec.md §6's
// min/maxApplicationWorkers).
type Config struct {
	Workers int // number of worker goroutines draining the shared queue.
}

// Stage is the Application stage: a shared event queue drained by
// Config.Workers goroutines, each dispatching to the same Handler
// (original_source/epfcp.h's ApplicationWorkGroup, recast without the
// C++ template-per-worker-type machinery since Go interfaces already
// give us that).
type Stage struct {
	cfg     Config
	handler Handler
	queue   chan any
}

// New constructs a Stage. workers is clamped to at least 1.
func New(cfg Config, handler Handler) *Stage {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Stage{cfg: cfg, handler: handler, queue: make(chan any, 1024)}
}

// Run starts cfg.Workers goroutines and blocks until ctx is cancelled,
// then waits for in-flight dispatches to finish. Events still queued
// when ctx is cancelled are not dispatched.
func (s *Stage) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case ev := <-s.queue:
					s.dispatch(ev)
				}
			}
		})
	}
	return g.Wait()
}

// PostEvent implements both communication.ApplicationSink and
// translation.ApplicationSink, letting either stage forward events
// through the same queue.
func (s *Stage) PostEvent(ev any) {
	s.queue <- ev
}

func (s *Stage) dispatch(ev any) {
	switch e := ev.(type) {
	case translation.RcvdReq:
		s.handler.OnRcvdReq(e)
	case translation.RcvdRsp:
		s.handler.OnRcvdRsp(e)
	case communication.ReqTimeout:
		s.handler.OnReqTimeout(e)
	case pfcpnode.LocalNodeStateChange:
		s.handler.OnLocalNodeStateChange(e)
	case pfcpnode.RemoteNodeStateChange:
		s.handler.OnRemoteNodeStateChange(e)
	case pfcpnode.RemoteNodeRestart:
		s.handler.OnRemoteNodeRestart(e)
	case communication.SndReqError:
		s.handler.OnSndReqError(e)
	case communication.SndRspError:
		s.handler.OnSndRspError(e)
	case translation.EncodeReqError:
		s.handler.OnEncodeReqError(e)
	case translation.EncodeRspError:
		s.handler.OnEncodeRspError(e)
	default:
		log.WithField("type", e).Warn("application: unknown event")
	}
}
