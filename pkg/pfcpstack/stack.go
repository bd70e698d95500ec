// Package pfcpstack wires the Communication, Translation and
// Application stages, the timer pool, and the TEID-range manager into
// one runnable unit, grounded on original_source/epfcp.h's namespace-level
// Initialize/Uninitialize entry points.
package pfcpstack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omec-project/pfcpstack/internal/application"
	"github.com/omec-project/pfcpstack/internal/communication"
	"github.com/omec-project/pfcpstack/internal/config"
	"github.com/omec-project/pfcpstack/internal/idalloc"
	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/timerpool"
	"github.com/omec-project/pfcpstack/internal/translation"
	"github.com/omec-project/pfcpstack/internal/translator"
	"github.com/omec-project/pfcpstack/internal/wire"
)

// ErrLocalNodeNotBound is returned by ReleaseLocalNode for an address
// with no prior CreateLocalNode call.
var ErrLocalNodeNotBound = errors.New("pfcpstack: local node not bound")

// Stack is the runtime's public handle: a running Communication,
// Translation and Application stage triple sharing one timer pool and
// TEID-range manager, plus the registry of bound local nodes.
type Stack struct {
	cfg       *config.Config
	snapshot  config.Config // captured once at Start, never mutated afterward (spec.md §9 "Open questions").
	teidRange *idalloc.TeidRangeManager

	timers        *timerpool.Pool
	communication *communication.Stage
	translation   *translation.Stage
	application   *application.Stage

	nodeCfg pfcpnode.Config

	mu     sync.Mutex
	locals map[string]*pfcpnode.LocalNode

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New builds a Stack from cfg and a codec, wiring the three stages'
// sink interfaces together. Run it with Start.
func New(cfg *config.Config, tr translator.Translator, handler application.Handler) (*Stack, error) {
	var teidRange *idalloc.TeidRangeManager
	if cfg.AssignTeidRange {
		tr2, err := idalloc.NewTeidRangeManager(cfg.TeidRangeBits)
		if err != nil {
			return nil, fmt.Errorf("pfcpstack: teid range manager: %w", err)
		}
		teidRange = tr2
	}

	timers := timerpool.New()

	commCfg := communication.Config{
		Port:             cfg.Port,
		T1:               time.Duration(cfg.T1) * time.Millisecond,
		HeartbeatT1:      time.Duration(cfg.HeartbeatT1) * time.Millisecond,
		N1:               cfg.N1,
		HeartbeatN1:      cfg.HeartbeatN1,
		NbrActivityWnds:  cfg.NbrActivityWnds,
		LenActivityWnd:   time.Duration(cfg.LenActivityWnd) * time.Millisecond,
		SocketBufferSize: cfg.SocketBufferSize,
	}
	commStage := communication.New(commCfg, tr, timers)

	translationStage := translation.New(translation.Config{
		HeartbeatT1: time.Duration(cfg.HeartbeatT1) * time.Millisecond,
		HeartbeatN1: cfg.HeartbeatN1,
	}, tr)

	appStage := application.New(application.Config{Workers: cfg.MaxApplicationWorkers}, handler)

	commStage.SetTranslationSink(translationStage)
	commStage.SetApplicationSink(appStage)
	translationStage.SetCommunicationSink(commStage)
	translationStage.SetApplicationSink(appStage)

	return &Stack{
		cfg:           cfg,
		teidRange:     teidRange,
		timers:        timers,
		communication: commStage,
		translation:   translationStage,
		application:   appStage,
		nodeCfg: pfcpnode.Config{
			NbrActivityWnds: cfg.NbrActivityWnds,
			SentVectorLen:   commCfg.SentVectorLen(),
			AssignTeidRange: cfg.AssignTeidRange,
		},
		locals: make(map[string]*pfcpnode.LocalNode),
	}, nil
}

// Start launches the three stages' Run loops, each on its own
// goroutine under a shared errgroup, and begins the timer pool (already
// started by timerpool.New at construction). Start returns once the
// goroutines are launched; call Stop or Wait to observe their exit.
func (s *Stack) Start(ctx context.Context) {
	s.snapshot = *s.cfg

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.group, ctx = errgroup.WithContext(ctx)

	s.group.Go(func() error { return s.communication.Run(ctx) })
	s.group.Go(func() error { return s.translation.Run(ctx) })
	s.group.Go(func() error { return s.application.Run(ctx) })
}

// Wait blocks until every stage goroutine has returned, propagating the
// first non-context.Canceled error (errgroup idiom).
func (s *Stack) Wait() error {
	if s.group == nil {
		return nil
	}
	return s.group.Wait()
}

// Stop cancels all three stages and the timer pool, then waits for the
// stage goroutines to exit (spec.md §9 "Uninitialize tears down in
// reverse dependency order").
func (s *Stack) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	err := s.Wait()
	s.timers.Stop()
	return err
}

// CreateLocalNode implements spec.md §4.1's bind(address): it registers
// a LocalNode with this Stack and opens its UDP socket through the
// Communication stage. ctx governs the socket's read loop, not Stack
// lifetime.
func (s *Stack) CreateLocalNode(ctx context.Context, ip net.IP) (*pfcpnode.LocalNode, error) {
	addr, err := pfcpaddr.NewEndpoint(ip)
	if err != nil {
		return nil, fmt.Errorf("pfcpstack: %w", err)
	}

	s.mu.Lock()
	if existing, ok := s.locals[addr.String()]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	local := pfcpnode.NewLocalNode(addr, s.nodeCfg, s.teidRange)
	if err := s.communication.Bind(ctx, local); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.locals[addr.String()] = local
	s.mu.Unlock()

	return local, nil
}

// ReleaseLocalNode implements spec.md §4.1's stop(): it tears down the
// local node's UDP socket through the Communication stage and drops it
// from the Stack's registry.
func (s *Stack) ReleaseLocalNode(ip net.IP) error {
	addr, err := pfcpaddr.NewEndpoint(ip)
	if err != nil {
		return fmt.Errorf("pfcpstack: %w", err)
	}

	s.mu.Lock()
	local, ok := s.locals[addr.String()]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("pfcpstack: %s: %w", addr, ErrLocalNodeNotBound)
	}

	if err := s.communication.Unbind(local); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.locals, addr.String())
	s.mu.Unlock()
	return nil
}

// CreateRemoteNode implements spec.md §4.1's createRemoteNode(ip, port).
func (s *Stack) CreateRemoteNode(local *pfcpnode.LocalNode, ip net.IP) (*pfcpnode.RemoteNode, error) {
	addr, err := pfcpaddr.NewEndpoint(ip)
	if err != nil {
		return nil, fmt.Errorf("pfcpstack: %w", err)
	}
	return s.communication.CreateRemoteNode(local, addr)
}

// LocalNode looks up a previously created local node by address.
func (s *Stack) LocalNode(ip net.IP) (*pfcpnode.LocalNode, bool) {
	addr, err := pfcpaddr.NewEndpoint(ip)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.locals[addr.String()]
	return n, ok
}

// Send lets a Handler hand a constructed message back to the runtime for
// encoding and transmission (spec.md §4.4 "SndMsg").
func (s *Stack) Send(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, msg wire.AppMsg, attempts int, retransmitMillis int64) {
	s.translation.PostSndMsg(local, remote, msg, attempts, retransmitMillis)
}

// PostSndMsg implements application.TranslationSink; it is the same as Send.
func (s *Stack) PostSndMsg(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, msg wire.AppMsg, attempts int, retransmitMillis int64) {
	s.Send(local, remote, msg, attempts, retransmitMillis)
}

// Disconnect begins the graceful drain of remote (spec.md §4.1
// "disconnect(remote)").
func (s *Stack) Disconnect(remote *pfcpnode.RemoteNode) { s.communication.Disconnect(remote) }

// DeleteSession implements spec.md §4.1's explicit deleteSession(session).
func (s *Stack) DeleteSession(session *pfcpnode.Session) { s.communication.DeleteSession(session) }

var _ application.TranslationSink = (*Stack)(nil)
