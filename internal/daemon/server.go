// Package daemon implements the live update hub: a Unix socket server that
// relays ticket change events from writers to every subscribed board.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/lanes/internal/events"
)

var (
	// ErrServerClosed is returned by Broadcast after Shutdown
	ErrServerClosed = errors.New("daemon shut down")
	// ErrBroadcastFull means the relay queue is saturated and the event was not taken
	ErrBroadcastFull = errors.New("broadcast queue full")
)

const (
	defaultBroadcastBuffer = 100
	defaultClientBuffer    = 10
)

// subscriber is one connected board or writer
type subscriber struct {
	conn net.Conn
	out  chan events.Message

	mu       sync.Mutex
	project  string // "" = every project
	lastSeen time.Time

	closeOnce sync.Once
}

func (sub *subscriber) wants(event events.Event) bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return event.Matches(sub.project)
}

func (sub *subscriber) follow(projectID string) {
	sub.mu.Lock()
	sub.project = projectID
	sub.mu.Unlock()
}

func (sub *subscriber) projectID() string {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.project
}

func (sub *subscriber) touch(now time.Time) {
	sub.mu.Lock()
	sub.lastSeen = now
	sub.mu.Unlock()
}

func (sub *subscriber) silentFor(now time.Time) time.Duration {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return now.Sub(sub.lastSeen)
}

// offer queues msg without blocking. Callers hold the server lock so out
// cannot be closed underneath them.
func (sub *subscriber) offer(msg events.Message) bool {
	select {
	case sub.out <- msg:
		return true
	default:
		return false
	}
}

// stop closes the outbound queue, which ends writeLoop
func (sub *subscriber) stop() {
	sub.closeOnce.Do(func() { close(sub.out) })
}

func (sub *subscriber) writeLoop() {
	enc := json.NewEncoder(sub.conn)
	for msg := range sub.out {
		if err := enc.Encode(msg); err != nil {
			return
		}
	}
}

// Server relays events between clients connected to a Unix socket
type Server struct {
	socketPath string
	listener   net.Listener
	logger     *slog.Logger
	metrics    *Metrics

	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	queue        chan events.Event
	seq          atomic.Int64
	clientBuffer int
	pingInterval time.Duration
	staleAfter   time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// Option customizes a Server
type Option func(*Server)

// WithHealthCheck sets how often clients are pinged and how long a silent
// client is kept
func WithHealthCheck(ping, staleAfter time.Duration) Option {
	return func(s *Server) {
		s.pingInterval = ping
		s.staleAfter = staleAfter
	}
}

// WithLogger sets the daemon logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBuffers sizes the relay queue and each client's send queue.
// Non-positive values keep the defaults.
func WithBuffers(broadcast, client int) Option {
	return func(s *Server) {
		if broadcast > 0 {
			s.queue = make(chan events.Event, broadcast)
		}
		if client > 0 {
			s.clientBuffer = client
		}
	}
}

// NewServer listens on socketPath, replacing a stale socket file left by a
// previous run
func NewServer(socketPath string, opts ...Option) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	s := &Server{
		socketPath:   socketPath,
		listener:     listener,
		logger:       slog.Default(),
		metrics:      NewMetrics(),
		subs:         make(map[*subscriber]struct{}),
		queue:        make(chan events.Event, defaultBroadcastBuffer),
		clientBuffer: defaultClientBuffer,
		pingInterval: 30 * time.Second,
		staleAfter:   90 * time.Second,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics exposes the daemon counters
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start serves until ctx is cancelled or Shutdown is called, then shuts down
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("daemon starting", "socket", s.socketPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	// Closing the listener is what unblocks Accept
	stopAccept := context.AfterFunc(ctx, func() { _ = s.listener.Close() })
	defer stopAccept()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.accept() })
	g.Go(func() error { s.relay(gctx); return nil })
	g.Go(func() error { s.reap(gctx); return nil })

	err := g.Wait()
	if err != nil {
		s.logger.Error("accept loop failed", "error", err)
	}
	if shutdownErr := s.Shutdown(); shutdownErr != nil {
		return shutdownErr
	}
	return err
}

func (s *Server) accept() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		sub := &subscriber{
			conn:     conn,
			out:      make(chan events.Message, s.clientBuffer),
			lastSeen: time.Now(),
		}
		count, ok := s.register(sub)
		if !ok {
			_ = conn.Close()
			return nil
		}
		s.logger.Debug("client connected", "clients", count)

		go s.serve(sub)
		go sub.writeLoop()
	}
}

// register adds sub unless the server is already shutting down
func (s *Server) register(sub *subscriber) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return 0, false
	default:
	}
	s.subs[sub] = struct{}{}
	count := len(s.subs)
	s.metrics.SetConnectedClients(int32(count))
	return count, true
}

// relay stamps queued events with a sequence id and fans them out
func (s *Server) relay(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.queue:
			event.SequenceID = s.seq.Add(1)
			if event.Timestamp.IsZero() {
				event.Timestamp = time.Now()
			}
			msg := events.Message{Version: events.ProtocolVersion, Type: "event", Event: &event}

			s.mu.RLock()
			for sub := range s.subs {
				if !sub.wants(event) {
					continue
				}
				// Slow clients miss events rather than stall everyone
				if sub.offer(msg) {
					s.metrics.IncEventsSent()
				} else {
					s.metrics.IncEventsDropped()
					s.logger.Warn("client send queue full, event dropped", "sequence", event.SequenceID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// serve reads from one client until it disconnects
func (s *Server) serve(sub *subscriber) {
	defer func() {
		s.drop(sub)
		s.logger.Debug("client disconnected", "clients", s.clientCount())
	}()

	dec := json.NewDecoder(sub.conn)
	for {
		var msg events.Message
		if err := dec.Decode(&msg); err != nil {
			return
		}
		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			s.logger.Warn("protocol version mismatch", "got", msg.Version, "want", events.ProtocolVersion)
		}
		s.handle(sub, msg)
	}
}

func (s *Server) handle(sub *subscriber, msg events.Message) {
	switch msg.Type {
	case "event":
		if msg.Event == nil {
			return
		}
		s.metrics.IncEventsReceived()
		if err := s.Broadcast(*msg.Event); err != nil {
			s.metrics.IncEventsDropped()
			s.logger.Warn("event not relayed", "error", err)
		}
	case "subscribe":
		if msg.Subscribe != nil {
			sub.follow(msg.Subscribe.ProjectID)
			s.logger.Debug("client subscribed", "project_id", msg.Subscribe.ProjectID)
		}
	case "pong":
		sub.touch(time.Now())
	}
}

// reap pings clients and drops those that stopped answering
func (s *Server) reap(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	ping := events.Message{
		Version: events.ProtocolVersion,
		Type:    "ping",
		Event:   &events.Event{Type: events.EventPing},
	}

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			var stale []*subscriber
			s.mu.RLock()
			for sub := range s.subs {
				if sub.silentFor(now) > s.staleAfter {
					stale = append(stale, sub)
				} else if sub.offer(ping) {
					s.metrics.IncEventsSent()
				}
			}
			s.mu.RUnlock()

			for _, sub := range stale {
				s.logger.Info("removing stale client")
				s.drop(sub)
			}
		}
	}
}

// Broadcast queues an event for every subscribed client without blocking
func (s *Server) Broadcast(event events.Event) error {
	select {
	case <-s.done:
		return ErrServerClosed
	default:
	}
	select {
	case s.queue <- event:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// Shutdown disconnects every client and removes the socket. It is safe to
// call more than once.
func (s *Server) Shutdown() error {
	s.stopOnce.Do(func() {
		s.logger.Info("shutting down daemon")

		s.mu.Lock()
		close(s.done)
		for sub := range s.subs {
			sub.stop()
			if err := sub.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Error("error closing client connection", "error", err)
			}
		}
		clear(s.subs)
		s.mu.Unlock()
		s.metrics.SetConnectedClients(0)

		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("error closing listener", "error", err)
		}
		if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove socket file", "error", err)
		}

		snap := s.metrics.GetSnapshot()
		s.logger.Info("daemon stopped",
			"events_received", snap.EventsReceived,
			"events_sent", snap.EventsSent,
			"events_dropped", snap.EventsDropped,
			"uptime", snap.Uptime)
	})
	return nil
}

func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// drop forgets sub and closes its connection
func (s *Server) drop(sub *subscriber) {
	s.mu.Lock()
	delete(s.subs, sub)
	count := len(s.subs)
	// Stopping under the lock keeps relay from offering to a closed queue
	sub.stop()
	s.mu.Unlock()

	if err := sub.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("error closing client connection", "error", err)
	}
	s.metrics.SetConnectedClients(int32(count))
}
