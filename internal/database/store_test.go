package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/lanes/internal/models"
)

func TestFindMany_ColumnOrderBreaksTies(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)

	insertTicket(t, s, p.ID, models.StatusTodo, "late", 1000, 2*time.Second)
	insertTicket(t, s, p.ID, models.StatusTodo, "early", 1000, time.Second)
	insertTicket(t, s, p.ID, models.StatusTodo, "top", 500, 3*time.Second)
	insertTicket(t, s, p.ID, models.StatusDone, "elsewhere", 1, 0)

	col := models.Column{ProjectID: p.ID, Status: models.StatusTodo}
	got := findMany(t, s, ColumnFilter(col), ColumnOrder...)

	assert.Equal(t, []string{"top", "early", "late"}, titles(got))
}

func TestFindOne_MaxAndNotFound(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)
	insertTicket(t, s, p.ID, models.StatusTodo, "a", 1000, 0)
	insertTicket(t, s, p.ID, models.StatusTodo, "b", 3000, time.Second)
	insertTicket(t, s, p.ID, models.StatusTodo, "c", 2000, 2*time.Second)

	col := ColumnFilter(models.Column{ProjectID: p.ID, Status: models.StatusTodo})
	err := s.WithTx(context.Background(), func(tx Tx) error {
		last, err := tx.FindOne(context.Background(), col, OrderBy{Field: SortPosition, Desc: true})
		require.NoError(t, err)
		assert.Equal(t, "b", last.Title)

		empty := ColumnFilter(models.Column{ProjectID: p.ID, Status: models.StatusBlocked})
		_, err = tx.FindOne(context.Background(), empty)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestInsert_RoundTripsAllFields(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)

	created := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)
	in := &models.Ticket{
		ID:          uuid.NewString(),
		ProjectID:   p.ID,
		Title:       "Title",
		Description: "Body",
		Status:      models.StatusBlocked,
		Priority:    models.PriorityCritical,
		AssigneeID:  "ana",
		Source:      "GITHUB",
		SourceURL:   "https://example.com/1",
		Position:    1500.001,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Nanosecond),
	}
	require.NoError(t, s.WithTx(context.Background(), func(tx Tx) error {
		return tx.Insert(context.Background(), in)
	}))

	got := findMany(t, s, TicketFilter{ID: &in.ID})
	require.Len(t, got, 1)
	out := got[0]
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Description, out.Description)
	assert.Equal(t, in.Status, out.Status)
	assert.Equal(t, in.Priority, out.Priority)
	assert.Equal(t, in.AssigneeID, out.AssigneeID)
	assert.Equal(t, in.Source, out.Source)
	assert.Equal(t, in.SourceURL, out.SourceURL)
	assert.Equal(t, in.Position, out.Position)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt), "nanosecond precision is kept")
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))
}

func TestInsert_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)

	err := s.WithTx(context.Background(), func(tx Tx) error {
		return tx.Insert(context.Background(), &models.Ticket{
			ID: uuid.NewString(), ProjectID: p.ID, Title: "x",
			Status: "LIMBO", Priority: models.PriorityLow, Position: 1,
		})
	})
	assert.Error(t, err, "status is a constrained enumeration")
}

func TestCount_IgnoresPaging(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)
	for i := 0; i < 5; i++ {
		insertTicket(t, s, p.ID, models.StatusTodo, "t", float64(i+1), time.Duration(i))
	}

	filter := TicketFilter{ProjectID: &p.ID, Limit: 2, Offset: 2}
	require.NoError(t, s.WithTx(context.Background(), func(tx Tx) error {
		n, err := tx.Count(context.Background(), filter)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		return nil
	}))

	page := findMany(t, s, filter, OrderBy{Field: SortPosition})
	require.Len(t, page, 2)
	assert.Equal(t, 3.0, page[0].Position)
}

func TestUpdateMany_PartialFields(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)
	a := insertTicket(t, s, p.ID, models.StatusTodo, "a", 1000, 0)
	b := insertTicket(t, s, p.ID, models.StatusTodo, "b", 2000, time.Second)

	later := testBase.Add(time.Hour)
	title := "renamed"
	require.NoError(t, s.WithTx(context.Background(), func(tx Tx) error {
		return tx.UpdateMany(context.Background(), []TicketUpdate{
			Placement(a.ID, models.StatusDone, 0, later),
			{ID: b.ID, Fields: TicketFields{Title: &title}},
			{ID: b.ID}, // empty updates are skipped
		})
	}))

	gotA := findMany(t, s, TicketFilter{ID: &a.ID})[0]
	assert.Equal(t, models.StatusDone, gotA.Status)
	assert.Equal(t, 0.0, gotA.Position)
	assert.True(t, later.Equal(gotA.UpdatedAt))
	assert.Equal(t, "a", gotA.Title)

	gotB := findMany(t, s, TicketFilter{ID: &b.ID})[0]
	assert.Equal(t, "renamed", gotB.Title)
	assert.Equal(t, 2000.0, gotB.Position)
	assert.True(t, b.UpdatedAt.Equal(gotB.UpdatedAt))
}

func TestUpdateMany_MissingRowRollsBackBatch(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)
	a := insertTicket(t, s, p.ID, models.StatusTodo, "a", 1000, 0)

	err := s.WithTx(context.Background(), func(tx Tx) error {
		return tx.UpdateMany(context.Background(), []TicketUpdate{
			Placement(a.ID, models.StatusTodo, 5, testBase),
			Placement(uuid.NewString(), models.StatusTodo, 6, testBase),
		})
	})
	require.ErrorIs(t, err, ErrNotFound)

	got := findMany(t, s, TicketFilter{ID: &a.ID})[0]
	assert.Equal(t, 1000.0, got.Position, "first update of the failed batch must not land")
}

func TestWithTx_ErrorRollsBack(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(tx Tx) error {
		if err := tx.Insert(context.Background(), &models.Ticket{
			ID: uuid.NewString(), ProjectID: p.ID, Title: "ghost",
			Status: models.StatusTodo, Priority: models.PriorityLow, Position: 1,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, findMany(t, s, TicketFilter{ProjectID: &p.ID}))
}

func TestDelete(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	p := createProject(t, s)
	a := insertTicket(t, s, p.ID, models.StatusTodo, "a", 1000, 0)

	require.NoError(t, s.WithTx(context.Background(), func(tx Tx) error {
		return tx.Delete(context.Background(), a.ID)
	}))
	err := s.WithTx(context.Background(), func(tx Tx) error {
		return tx.Delete(context.Background(), a.ID)
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjects(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	first := createProject(t, s)
	second := &models.Project{ID: uuid.NewString(), Key: "SEC", Name: "Second", Description: "d", CreatedAt: testBase.Add(time.Hour), UpdatedAt: testBase.Add(time.Hour)}
	require.NoError(t, s.CreateProject(ctx, second))
	insertTicket(t, s, first.ID, models.StatusTodo, "a", 1, 0)

	got, err := s.GetProject(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Name)
	assert.Equal(t, "d", got.Description)

	all, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)

	require.NoError(t, s.DeleteProject(ctx, first.ID))
	_, err = s.GetProject(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, findMany(t, s, TicketFilter{ProjectID: &first.ID}), "tickets are deleted with their project")

	assert.ErrorIs(t, s.DeleteProject(ctx, first.ID), ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		_, err := tx.GetProject(ctx, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	}))
}

func TestProjects_UniqueKey(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	first := createProject(t, s)
	clash := &models.Project{ID: uuid.NewString(), Key: first.Key, Name: "Clash", CreatedAt: testBase, UpdatedAt: testBase}
	assert.ErrorIs(t, s.CreateProject(ctx, clash), ErrDuplicateKey)

	other := &models.Project{ID: uuid.NewString(), Key: "OTHER", Name: "Other", CreatedAt: testBase, UpdatedAt: testBase}
	require.NoError(t, s.CreateProject(ctx, other))

	err := s.WithTx(ctx, func(tx Tx) error {
		other.Key = first.Key
		return tx.UpdateProject(ctx, other)
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestProjects_UpdateInTx(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()
	p := createProject(t, s)

	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		p.Name = "Renamed"
		p.Key = "REN"
		p.Description = "new"
		p.UpdatedAt = testBase.Add(time.Minute)
		return tx.UpdateProject(ctx, p)
	}))

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "REN", got.Key)
	assert.Equal(t, "new", got.Description)
	assert.True(t, got.UpdatedAt.Equal(testBase.Add(time.Minute)))

	missing := &models.Project{ID: uuid.NewString(), Key: "GONE", Name: "x", UpdatedAt: testBase}
	err = s.WithTx(ctx, func(tx Tx) error { return tx.UpdateProject(ctx, missing) })
	assert.ErrorIs(t, err, ErrNotFound)
}
