package daemon

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()
	before := time.Now()

	m := NewMetrics()

	snap := m.GetSnapshot()
	assert.Zero(t, snap.EventsSent)
	assert.Zero(t, snap.EventsReceived)
	assert.Zero(t, snap.EventsDropped)
	assert.Zero(t, snap.ConnectedClients)
	assert.False(t, snap.StartTime.Before(before))
}

func TestMetricsCounters(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.IncEventsSent()
	m.IncEventsSent()
	m.IncEventsReceived()
	m.IncEventsDropped()
	m.SetConnectedClients(4)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.EventsSent)
	assert.Equal(t, int64(1), snap.EventsReceived)
	assert.Equal(t, int64(1), snap.EventsDropped)
	assert.Equal(t, int32(4), snap.ConnectedClients)
	assert.NotEmpty(t, snap.Uptime)
}

func TestMetricsConcurrency(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	const goroutines, iterations = 50, 100
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				m.IncEventsSent()
				m.IncEventsReceived()
				_ = m.GetSnapshot()
			}
		}()
	}
	wg.Wait()

	snap := m.GetSnapshot()
	assert.Equal(t, int64(goroutines*iterations), snap.EventsSent)
	assert.Equal(t, int64(goroutines*iterations), snap.EventsReceived)
}

func TestMetricsSnapshot_IsImmutable(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.IncEventsSent()

	snap := m.GetSnapshot()
	m.IncEventsSent()

	assert.Equal(t, int64(1), snap.EventsSent)
	assert.Equal(t, int64(2), m.GetSnapshot().EventsSent)
}
