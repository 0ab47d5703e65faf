package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	writeTimeout = 5 * time.Second
	// The daemon pings every 30s, so two missed pings mean the link is dead
	readTimeout = 60 * time.Second
)

// Client is a connection to the lanes daemon. Outgoing events are merged
// within a debounce window, and Listen reconnects after failures while
// keeping the current subscription.
type Client struct {
	socketPath string
	logger     *slog.Logger

	debounce   time.Duration
	maxRetries int
	baseDelay  time.Duration

	mu      sync.Mutex
	conn    net.Conn
	enc     *json.Encoder
	dec     *json.Decoder
	project string
	closed  bool

	outbox    chan Event
	pumpDone  chan struct{}
	lastSeq   int64
	lifetime  context.Context
	terminate context.CancelFunc
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithDebounce sets the batching window (default 100ms)
func WithDebounce(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithReconnect sets how often and how patiently Listen reconnects
func WithReconnect(maxRetries int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithLogger sets the client logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient prepares a client for the daemon socket at socketPath. Nothing
// is dialled until Connect.
func NewClient(socketPath string, opts ...ClientOption) (*Client, error) {
	if socketPath == "" {
		return nil, errors.New("socket path is required")
	}

	c := &Client{
		socketPath: socketPath,
		logger:     slog.Default(),
		debounce:   100 * time.Millisecond,
		maxRetries: 5,
		baseDelay:  time.Second,
		outbox:     make(chan Event, 100),
		pumpDone:   make(chan struct{}),
	}
	c.lifetime, c.terminate = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(c)
	}

	go c.pump()
	return c, nil
}

// Connect dials the daemon and restores the current subscription
func (c *Client) Connect(ctx context.Context) error {
	conn, err := (&net.Dialer{}).DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		_ = conn.Close()
		return ErrNotConnected
	}
	c.dropLocked()
	c.conn, c.enc, c.dec = conn, json.NewEncoder(conn), json.NewDecoder(conn)

	if err := c.writeLocked(subscribeMessage(c.project)); err != nil {
		c.dropLocked()
		return fmt.Errorf("failed to send subscription: %w", err)
	}
	return nil
}

// SendEvent queues an event without blocking. Queued events are merged and
// flushed once per debounce window; ErrQueueFull means the queue is saturated.
func (c *Client) SendEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrNotConnected
	}

	select {
	case c.outbox <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// batch folds queued events into the single event sent per window
type batch struct {
	event Event
	ok    bool
}

func (b *batch) add(e Event) {
	if b.ok {
		b.event.merge(e)
		return
	}
	e.Statuses = append([]string(nil), e.Statuses...)
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	b.event, b.ok = e, true
}

func (b *batch) take() (Event, bool) {
	e, ok := b.event, b.ok
	*b = batch{}
	return e, ok
}

// pump flushes the outbox once per debounce window until Close closes it
func (c *Client) pump() {
	defer close(c.pumpDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var pending batch
	flush := func() {
		event, ok := pending.take()
		if !ok {
			return
		}
		err := c.write(Message{Version: ProtocolVersion, Type: "event", Event: &event})
		if err != nil && !isConnectionError(err) && !errors.Is(err, ErrNotConnected) {
			c.logger.Error("failed to send batched event", "error", err)
		}
	}

	for {
		select {
		case event, ok := <-c.outbox:
			if !ok {
				flush()
				return
			}
			pending.add(event)
		case <-ticker.C:
			flush()
		}
	}
}

// write sends one message with a short deadline so a dead peer is noticed
func (c *Client) write(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(msg)
}

func (c *Client) writeLocked(msg Message) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	return c.enc.Encode(msg)
}

// dropLocked closes the current connection, if any
func (c *Client) dropLocked() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil && !isConnectionError(err) {
		c.logger.Debug("error closing daemon connection", "error", err)
	}
	c.conn, c.enc, c.dec = nil, nil, nil
}

// Listen streams daemon events until ctx ends, Close is called or
// reconnecting gives up; then the channel is closed.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	connected := c.conn != nil
	c.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}

	out := make(chan Event, 10)
	go func() {
		defer close(out)
		for {
			err := c.receive(ctx, out)
			if err == nil || ctx.Err() != nil || c.lifetime.Err() != nil {
				return
			}

			c.logger.Warn("connection lost, reconnecting", "error", err)
			if err := c.reconnect(ctx); err != nil {
				c.logger.Error("failed to reconnect, giving up", "attempts", c.maxRetries, "error", err)
				return
			}
			// A restarted daemon numbers events from 1 again
			c.lastSeq = 0
			c.logger.Info("reconnected to daemon")
		}
	}()
	return out, nil
}

// receive decodes messages until the connection fails. It returns nil only
// when ctx ends.
func (c *Client) receive(ctx context.Context, out chan<- Event) error {
	for {
		c.mu.Lock()
		conn, dec := c.conn, c.dec
		c.mu.Unlock()
		if conn == nil {
			return ErrNotConnected
		}
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}

		var msg Message
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}
		if msg.Version != 0 && msg.Version != ProtocolVersion {
			c.logger.Warn("protocol version mismatch", "got", msg.Version, "want", ProtocolVersion)
		}

		switch msg.Type {
		case "ping":
			if err := c.write(Message{Version: ProtocolVersion, Type: "pong"}); err != nil && !isConnectionError(err) {
				c.logger.Error("failed to send pong", "error", err)
			}
		case "event":
			// Sequence ids only grow, so anything older is a replay
			if msg.Event == nil || msg.Event.SequenceID <= c.lastSeq {
				continue
			}
			c.lastSeq = msg.Event.SequenceID
			select {
			case out <- *msg.Event:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// reconnect redials with exponential backoff, stopping early on Close
func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	c.dropLocked()
	c.mu.Unlock()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		if err := c.lifetime.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := c.Connect(ctx)
		if err != nil {
			c.logger.Debug("reconnection attempt failed", "attempt", attempt, "max", c.maxRetries, "error", err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries)), ctx))
}

// Subscribe narrows delivery to one project, "" for every project. The
// choice survives reconnects even when sending it now fails.
func (c *Client) Subscribe(projectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.project = projectID
	return c.writeLocked(subscribeMessage(projectID))
}

// Close flushes queued events, then disconnects and stops Listen
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.outbox)
	c.mu.Unlock()

	<-c.pumpDone
	c.terminate()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.enc, c.dec = nil, nil, nil
	return err
}

func subscribeMessage(projectID string) Message {
	return Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{ProjectID: projectID},
	}
}

// isConnectionError reports errors that just mean the daemon went away
func isConnectionError(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
