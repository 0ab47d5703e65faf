package ticket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/events"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// recordingPublisher records every event the service publishes
type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.Event
}

func (r *recordingPublisher) Connect(ctx context.Context) error { return nil }
func (r *recordingPublisher) SendEvent(event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, event)
	return nil
}
func (r *recordingPublisher) Listen(ctx context.Context) (<-chan events.Event, error) {
	return nil, nil
}
func (r *recordingPublisher) Subscribe(projectID string) error { return nil }
func (r *recordingPublisher) Close() error                     { return nil }

func (r *recordingPublisher) events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.sent...)
}

// steppingClock returns a clock that advances one millisecond per call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := testutil.BaseTime.Add(time.Hour)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}

type fixture struct {
	store     *database.Store
	project   *models.Project
	svc       Service
	publisher *recordingPublisher
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := testutil.SetupTestStore(t)
	project := testutil.CreateTestProject(t, store, "Board")
	publisher := &recordingPublisher{}
	opts = append([]Option{WithClock(steppingClock())}, opts...)
	return &fixture{
		store:     store,
		project:   project,
		svc:       NewService(store, publisher, opts...),
		publisher: publisher,
	}
}

func (f *fixture) seed(t *testing.T, status models.Status, titles []string, positions []float64) []*models.Ticket {
	t.Helper()
	return testutil.SeedColumn(t, f.store, f.project.ID, status, titles, positions)
}

func (f *fixture) column(t *testing.T, status models.Status) []*models.Ticket {
	t.Helper()
	return testutil.ColumnTickets(t, f.store, f.project.ID, status)
}

func ptr[T any](v T) *T {
	return &v
}
