package ticket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/testutil"
)

// Moves and reorders racing on one column never leave two tickets on the
// same key, and the next move compacts the column back to 0..n-1.
func TestOrdering_ConcurrentWritesOnOneColumn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.SetupFileStore(t)
	project := testutil.CreateTestProject(t, store, "Race")
	svc := NewService(store, nil)

	titles := []string{"A", "B", "C", "D", "E", "F"}
	seeded := testutil.SeedColumn(t, store, project.ID, models.StatusTodo, titles,
		[]float64{1000, 2000, 3000, 4000, 5000, 6000})

	const workers = 12
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := seeded[i%len(seeded)].ID
			var err error
			if i%2 == 0 {
				_, err = svc.MoveTicket(ctx, id, MoveRequest{Status: models.StatusTodo, Index: i % len(seeded)})
			} else {
				// Far above the dense range so the gap never runs out
				_, err = svc.ReorderTicket(ctx, id, ReorderRequest{Position: ptr(10000 + float64(i)*1000)})
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	col := testutil.ColumnTickets(t, store, project.ID, models.StatusTodo)
	require.Len(t, col, len(titles))
	seen := map[float64]string{}
	for _, ticket := range col {
		prev, dup := seen[ticket.Position]
		require.False(t, dup, "%s and %s share key %v", prev, ticket.Title, ticket.Position)
		seen[ticket.Position] = ticket.Title
	}

	_, err := svc.MoveTicket(ctx, col[0].ID, MoveRequest{Status: models.StatusTodo, Index: 0})
	require.NoError(t, err)

	col = testutil.ColumnTickets(t, store, project.ID, models.StatusTodo)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, testutil.Positions(col))
	got := testutil.Titles(col)
	sort.Strings(got)
	assert.Equal(t, titles, got)
}

var errAttemptAborted = errors.New("attempt aborted")

// replayingStore runs every transaction body once in an aborted attempt
// before the attempt that commits, the way a serialization retry does.
type replayingStore struct {
	database.ColumnStore
	attempts atomic.Int32
}

func (r *replayingStore) WithTx(ctx context.Context, fn func(tx database.Tx) error) error {
	err := r.ColumnStore.WithTx(ctx, func(tx database.Tx) error {
		r.attempts.Add(1)
		if err := fn(tx); err != nil {
			return err
		}
		return errAttemptAborted
	})
	if !errors.Is(err, errAttemptAborted) {
		return err
	}
	return r.ColumnStore.WithTx(ctx, func(tx database.Tx) error {
		r.attempts.Add(1)
		return fn(tx)
	})
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestOrdering_MetricsCountCommittedWorkOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	project := testutil.CreateTestProject(t, store, "Metrics")
	seeded := testutil.SeedColumn(t, store, project.ID, models.StatusTodo,
		[]string{"A", "B", "C"}, []float64{1000, 2000, 3000})

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	replaying := &replayingStore{ColumnStore: store}
	svc := NewService(replaying, nil).(*service)
	svc.metrics = newEngineMetricsFrom(provider.Meter("test"), tracenoop.NewTracerProvider().Tracer("test"))

	_, err := svc.ReorderTicket(ctx, seeded[2].ID, ReorderRequest{Position: ptr(1500.0)})
	require.NoError(t, err)
	_, err = svc.MoveTicket(ctx, seeded[0].ID, MoveRequest{Status: models.StatusDone, Index: 0})
	require.NoError(t, err)

	assert.Equal(t, int32(4), replaying.attempts.Load())
	assert.Equal(t, int64(1), counterTotal(t, reader, "lanes.ordering.reorders"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "lanes.ordering.moves"))
	// reorder writes the mover; the move compacts two TODO rows and places A in DONE
	assert.Equal(t, int64(4), counterTotal(t, reader, "lanes.ordering.rows_written"))
}
