package daemon

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/thenoetrevino/lanes/internal/telemetry"
)

const metricsScopeName = "github.com/thenoetrevino/lanes/daemon"

// Metrics tracks daemon statistics. Counters are kept locally for the
// shutdown summary and mirrored to OpenTelemetry when telemetry is on.
type Metrics struct {
	EventsSent       atomic.Int64
	EventsReceived   atomic.Int64
	EventsDropped    atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time

	sent     metric.Int64Counter
	received metric.Int64Counter
	dropped  metric.Int64Counter
}

// NewMetrics creates a new Metrics instance bound to the global meter provider
func NewMetrics() *Metrics {
	m := &Metrics{StartTime: time.Now()}

	meter := telemetry.Meter(metricsScopeName)
	m.sent, _ = meter.Int64Counter("lanes.daemon.events.sent",
		metric.WithDescription("Messages queued to clients"))
	m.received, _ = meter.Int64Counter("lanes.daemon.events.received",
		metric.WithDescription("Events published by clients"))
	m.dropped, _ = meter.Int64Counter("lanes.daemon.events.dropped",
		metric.WithDescription("Events not delivered because a queue was full"))
	_, _ = meter.Int64ObservableGauge("lanes.daemon.clients",
		metric.WithDescription("Connected clients"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(m.ConnectedClients.Load()))
			return nil
		}))

	return m
}

// IncEventsSent increments the events sent counter
func (m *Metrics) IncEventsSent() {
	m.EventsSent.Add(1)
	m.sent.Add(context.Background(), 1)
}

// IncEventsReceived increments the events received counter
func (m *Metrics) IncEventsReceived() {
	m.EventsReceived.Add(1)
	m.received.Add(context.Background(), 1)
}

// IncEventsDropped increments the dropped events counter
func (m *Metrics) IncEventsDropped() {
	m.EventsDropped.Add(1)
	m.dropped.Add(context.Background(), 1)
}

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsSent       int64     `json:"events_sent"`
	EventsReceived   int64     `json:"events_received"`
	EventsDropped    int64     `json:"events_dropped"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsSent:       m.EventsSent.Load(),
		EventsReceived:   m.EventsReceived.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).String(),
	}
}
