package telemetry_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/telemetry"
	"github.com/thenoetrevino/lanes/internal/testutil"
)

// These tests swap global providers, so they do not run in parallel.

func TestInit_DisabledLeavesStoreUntouched(t *testing.T) {
	require.NoError(t, telemetry.Init(context.Background(), telemetry.Options{}, "lanes-test", "dev"))
	assert.False(t, telemetry.Enabled())

	store := testutil.SetupTestStore(t)
	assert.Same(t, store, telemetry.WrapStore(store).(*database.Store))
}

func TestWrapStore_ExportsSpans(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	opts := telemetry.Options{Enabled: true, Stdout: true, Writer: &out}
	require.NoError(t, telemetry.Init(ctx, opts, "lanes-test", "dev"))
	t.Cleanup(func() { telemetry.Shutdown(context.Background()) })
	assert.True(t, telemetry.Enabled())

	wrapped := telemetry.WrapStore(testutil.SetupTestStore(t))
	_, ok := wrapped.(*telemetry.InstrumentedStore)
	require.True(t, ok)

	project := testutil.CreateTestProject(t, wrapped, "traced")
	testutil.SeedColumn(t, wrapped, project.ID, models.StatusTodo, []string{"A"}, []float64{1000})

	boom := errors.New("boom")
	err := wrapped.WithTx(ctx, func(tx database.Tx) error {
		if _, err := tx.Count(ctx, database.TicketFilter{ProjectID: &project.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := wrapped.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "traced", got.Name)

	require.NoError(t, wrapped.WithTx(ctx, func(tx database.Tx) error {
		got.Name = "renamed"
		if err := tx.UpdateProject(ctx, got); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, got.ID)
	}))
	_, err = wrapped.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	telemetry.Shutdown(ctx)
	assert.False(t, telemetry.Enabled())

	exported := out.String()
	assert.Contains(t, exported, "storage.WithTx")
	assert.Contains(t, exported, "storage.Insert")
	assert.Contains(t, exported, "storage.Count")
	assert.Contains(t, exported, "storage.TxUpdateProject")
	assert.Contains(t, exported, "storage.TxDeleteProject")
	assert.Contains(t, exported, "boom")
}
