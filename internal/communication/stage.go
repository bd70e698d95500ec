// Package communication implements the Communication stage of spec.md
// §4.2: a single-threaded, event-driven owner of the UDP sockets,
// request retransmission, duplicate suppression, response-window
// garbage collection, heartbeat synthesis, and peer failure/restart
// detection.
//
// Grounded on the teacher's internal/network/{transaction,sender,
// receiver}.go for the socket/tracker idiom, generalized from a single
// pcap-replay client into a symmetric two-way peer per spec.md §4.2.
package communication

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/omec-project/pfcpstack/internal/pfcpaddr"
	"github.com/omec-project/pfcpstack/internal/pfcpnode"
	"github.com/omec-project/pfcpstack/internal/timerpool"
	"github.com/omec-project/pfcpstack/internal/translator"
)

// Config bundles the timing knobs of spec.md §6's Configuration surface
// relevant to this stage.
type Config struct {
	Port             int
	T1               time.Duration
	HeartbeatT1      time.Duration
	N1               int
	HeartbeatN1      int
	NbrActivityWnds  int
	LenActivityWnd   time.Duration
	SocketBufferSize int
}

// SentVectorLen is the sent[] arity of spec.md §6: max(n1, heartbeatN1).
func (c Config) SentVectorLen() int {
	if c.HeartbeatN1 > c.N1 {
		return c.HeartbeatN1
	}
	return c.N1
}

// MaxRspWait is the response-window flip interval of spec.md §3:
// max(T1, heartbeatT1) * max(N1, heartbeatN1).
func (c Config) MaxRspWait() time.Duration {
	t1 := c.T1
	if c.HeartbeatT1 > t1 {
		t1 = c.HeartbeatT1
	}
	return t1 * time.Duration(c.SentVectorLen())
}

// Stage is the Communication stage: one goroutine running Run, reached
// only through its Post* methods and socket read loops, both of which
// just enqueue events (spec.md §5 "no stage reads another stage's
// state").
type Stage struct {
	cfg        Config
	translator translator.Translator
	translation TranslationSink
	app        ApplicationSink
	timers     *timerpool.Pool

	queue chan any

	mu      sync.RWMutex
	locals  map[string]*localBinding
	rspTag  pfcpnode.RspWndTag

	startedAt time.Time
	done      chan struct{}
}

type localBinding struct {
	node *pfcpnode.LocalNode
	conn *net.UDPConn
	stop chan struct{}
}

// New constructs a Stage. translation and app are set separately via
// SetTranslationSink/SetApplicationSink because pkg/pfcpstack builds
// the three stages before any of them can reference each other.
func New(cfg Config, tr translator.Translator, timers *timerpool.Pool) *Stage {
	if cfg.Port == 0 {
		cfg.Port = 8805
	}
	return &Stage{
		cfg:        cfg,
		translator: tr,
		timers:     timers,
		queue:      make(chan any, 256),
		locals:     make(map[string]*localBinding),
		rspTag:     1,
		done:       make(chan struct{}),
	}
}

func (s *Stage) SetTranslationSink(t TranslationSink) { s.translation = t }
func (s *Stage) SetApplicationSink(a ApplicationSink)  { s.app = a }

// Bind opens a UDP socket for local, registers local with the Stage
// (spec.md §4.1 "registered with Communication"), marks it Started and
// starts its read loop.
func (s *Stage) Bind(ctx context.Context, local *pfcpnode.LocalNode) error {
	udpAddr := &net.UDPAddr{IP: local.Address.IP(), Port: s.cfg.Port}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("communication: bind %s: %w", local.Address, err)
	}
	if s.cfg.SocketBufferSize > 0 {
		_ = conn.SetReadBuffer(s.cfg.SocketBufferSize)
		_ = conn.SetWriteBuffer(s.cfg.SocketBufferSize)
	}

	stop := make(chan struct{})
	s.mu.Lock()
	s.locals[local.Address.String()] = &localBinding{node: local, conn: conn, stop: stop}
	s.mu.Unlock()

	previous := local.Start(time.Now())
	s.postAppEvent(pfcpnode.LocalNodeStateChange{Local: local, Previous: previous, Current: pfcpnode.LocalStarted})

	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = conn.Close()
	}()
	go s.readLoop(ctx, local, conn)
	return nil
}

// Unbind implements spec.md §4.1's stop(): transitions the node
// Stopping then Stopped, closing its UDP socket so readLoop returns,
// and emits LocalNodeStateChange for both transitions.
func (s *Stage) Unbind(local *pfcpnode.LocalNode) error {
	key := local.Address.String()

	s.mu.Lock()
	b, ok := s.locals[key]
	if ok {
		delete(s.locals, key)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("communication: unbind %s: not bound", local.Address)
	}

	previous := local.Stop()
	s.postAppEvent(pfcpnode.LocalNodeStateChange{Local: local, Previous: previous, Current: pfcpnode.LocalStopping})

	close(b.stop)
	_ = b.conn.Close()

	previous = local.Stopped()
	s.postAppEvent(pfcpnode.LocalNodeStateChange{Local: local, Previous: previous, Current: pfcpnode.LocalStopped})
	return nil
}

func (s *Stage) readLoop(ctx context.Context, local *pfcpnode.LocalNode, conn *net.UDPConn) {
	buf := make([]byte, 65535)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.WithError(err).Warn("communication: read error")
			continue
		}
		src, err := pfcpaddr.NewEndpoint(addr.IP)
		if err != nil {
			continue
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		s.queue <- inboundDatagramEvent{local: local, src: src, data: data}
	}
}

func (s *Stage) socketFor(local *pfcpnode.LocalNode) *net.UDPConn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.locals[local.Address.String()]
	if !ok {
		return nil
	}
	return b.conn
}

// Run drives the event loop until ctx is cancelled. It is the Stage's
// only goroutine touching stage-owned state (spec.md §5).
func (s *Stage) Run(ctx context.Context) error {
	defer close(s.done)
	s.startedAt = time.Now()

	activityTicker := time.NewTicker(s.cfg.LenActivityWnd)
	defer activityTicker.Stop()
	rspTicker := time.NewTicker(s.cfg.MaxRspWait())
	defer rspTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.queue:
			s.handle(ev)
		case <-activityTicker.C:
			s.tickActivity()
		case <-rspTicker.C:
			s.tickResponseWindow()
		}
	}
}

func (s *Stage) handle(ev any) {
	switch e := ev.(type) {
	case inboundDatagramEvent:
		s.handleInbound(e)
	case sndReqEvent:
		s.handleSndReq(e)
	case sndRspEvent:
		s.handleSndRsp(e)
	case reqTimeoutTimerEvent:
		s.handleReqTimeoutTimer(e)
	case disconnectEvent:
		s.handleDisconnect(e)
	case delNxtRmtSessionEvent:
		s.handleDelNxtRmtSession(e)
	case delSessionEvent:
		s.handleDelSession(e)
	default:
		log.WithField("type", fmt.Sprintf("%T", ev)).Warn("communication: unknown event")
	}
}

// PostTimerEvent implements timerpool.Target, routing expired T1 timers
// back onto this stage's own queue so they are handled by the single
// Run goroutine rather than the timer pool's thread.
func (s *Stage) PostTimerEvent(ev any) {
	s.queue <- ev
}

// PostSndReq is called by Translation after encoding an outbound
// request (spec.md §4.2 "Outbound request").
func (s *Stage) PostSndReq(req *pfcpnode.ReqOut) { s.queue <- sndReqEvent{req: req} }

// PostSndRsp is called by Translation after encoding an outbound
// response (spec.md §4.2 "Outbound response").
func (s *Stage) PostSndRsp(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, seqNum uint32, data []byte) {
	s.queue <- sndRspEvent{local: local, remote: remote, seqNum: seqNum, data: data}
}

// CreateRemoteNode implements spec.md §4.1's application-triggered
// createRemoteNode(ip, port), emitting RemoteNodeStateChange for the
// transition to Started (spec.md §4.1 "...transition to Started, emit
// a RemoteNodeStateChange event").
func (s *Stage) CreateRemoteNode(local *pfcpnode.LocalNode, addr pfcpaddr.Endpoint) (*pfcpnode.RemoteNode, error) {
	remote, previous, err := local.CreateRemoteNode(addr)
	if err != nil {
		return nil, err
	}
	s.postAppEvent(pfcpnode.RemoteNodeStateChange{Remote: remote, Previous: previous, Current: pfcpnode.RemoteStarted})
	return remote, nil
}

// Disconnect begins the graceful drain of remote.
func (s *Stage) Disconnect(remote *pfcpnode.RemoteNode) { s.queue <- disconnectEvent{remote: remote} }

// DeleteSession is the application-triggered explicit destroy of spec.md
// §3.
func (s *Stage) DeleteSession(session *pfcpnode.Session) {
	s.queue <- delSessionEvent{session: session}
}

func (s *Stage) send(local *pfcpnode.LocalNode, remote *pfcpnode.RemoteNode, data []byte) error {
	conn := s.socketFor(local)
	if conn == nil {
		return fmt.Errorf("communication: no socket bound for %s", local.Address)
	}
	_, err := conn.WriteToUDP(data, &net.UDPAddr{IP: remote.Address.IP(), Port: s.cfg.Port})
	return err
}
