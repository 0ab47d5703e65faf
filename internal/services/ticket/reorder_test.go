package ticket

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/position"
	"github.com/thenoetrevino/lanes/internal/testutil"
)

func TestReorderTicket_CollisionIsNudgedAfterOccupant(t *testing.T) {
	t.Parallel()
	f := setup(t)
	seeded := f.seed(t, models.StatusTodo, []string{"A", "B"}, []float64{1000, 1500})

	ticket, err := f.svc.ReorderTicket(context.Background(), seeded[0].ID, ReorderRequest{Position: ptr(1500.0)})
	require.NoError(t, err)

	assert.InDelta(t, 1500.001, ticket.Position, 1e-9)
	assert.NotEqual(t, 1500.0, ticket.Position)

	col := f.column(t, models.StatusTodo)
	assert.Equal(t, []string{"B", "A"}, titlesOf(col))
	assert.Equal(t, 1500.0, col[0].Position)
	assert.InDelta(t, 1500.001, col[1].Position, 1e-9)
}

func TestReorderTicket_NudgeIsDeterministic(t *testing.T) {
	t.Parallel()

	// Whichever ticket moves onto the other always lands just after it
	for _, mover := range []int{0, 1} {
		f := setup(t)
		seeded := f.seed(t, models.StatusTodo, []string{"A", "B"}, []float64{2000, 4000})
		occupant := seeded[1-mover]

		ticket, err := f.svc.ReorderTicket(context.Background(), seeded[mover].ID, ReorderRequest{Position: ptr(occupant.Position)})
		require.NoError(t, err)
		assert.Greater(t, ticket.Position, occupant.Position)
		assert.InDelta(t, occupant.Position+position.MinGap, ticket.Position, 1e-9)

		col := f.column(t, models.StatusTodo)
		assert.Equal(t, []string{occupant.Title, seeded[mover].Title}, titlesOf(col))
	}
}

func TestReorderTicket_ExplicitPositionBetweenNeighbours(t *testing.T) {
	t.Parallel()
	f := setup(t)
	seeded := f.seed(t, models.StatusTodo, []string{"A", "B", "C"}, []float64{1000, 2000, 3000})

	ticket, err := f.svc.ReorderTicket(context.Background(), seeded[2].ID, ReorderRequest{Position: ptr(1500.0)})
	require.NoError(t, err)

	assert.Equal(t, 1500.0, ticket.Position)
	assert.Equal(t, []string{"A", "C", "B"}, titlesOf(f.column(t, models.StatusTodo)))
}

func TestReorderTicket_TopOfColumn(t *testing.T) {
	t.Parallel()
	f := setup(t)
	seeded := f.seed(t, models.StatusTodo, []string{"A", "B", "C"}, []float64{1000, 2000, 3000})

	ticket, err := f.svc.ReorderTicket(context.Background(), seeded[2].ID, ReorderRequest{})
	require.NoError(t, err)

	assert.Equal(t, 500.0, ticket.Position)
	assert.Equal(t, []string{"C", "A", "B"}, titlesOf(f.column(t, models.StatusTodo)))
}

func TestReorderTicket_TopOfEmptyColumnInAnotherStatus(t *testing.T) {
	t.Parallel()
	f := setup(t)
	seeded := f.seed(t, models.StatusTodo, []string{"A", "B"}, []float64{1000, 2000})

	ticket, err := f.svc.ReorderTicket(context.Background(), seeded[0].ID, ReorderRequest{Status: ptr(models.StatusInProgress)})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInProgress, ticket.Status)
	assert.Equal(t, position.Fresh(), ticket.Position)
	assert.Equal(t, []string{"B"}, titlesOf(f.column(t, models.StatusTodo)))
	assert.Equal(t, []string{"A"}, titlesOf(f.column(t, models.StatusInProgress)))

	sent := f.publisher.events()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"TODO", "IN_PROGRESS"}, sent[0].Statuses)
}

func TestReorderTicket_CrossColumnWithPosition(t *testing.T) {
	t.Parallel()
	f := setup(t)
	todo := f.seed(t, models.StatusTodo, []string{"A"}, []float64{1000})
	f.seed(t, models.StatusDone, []string{"X", "Y"}, []float64{1000, 2000})

	ticket, err := f.svc.ReorderTicket(context.Background(), todo[0].ID, ReorderRequest{
		Status:   ptr(models.StatusDone),
		Position: ptr(1000.0),
	})
	require.NoError(t, err)

	assert.InDelta(t, 1000.001, ticket.Position, 1e-9)
	assert.Equal(t, []string{"X", "A", "Y"}, titlesOf(f.column(t, models.StatusDone)))
}

func TestReorderTicket_OnlyMovingTicketIsWritten(t *testing.T) {
	t.Parallel()
	f := setup(t)
	seeded := f.seed(t, models.StatusTodo, []string{"A", "B", "C"}, []float64{1000, 2000, 3000})

	_, err := f.svc.ReorderTicket(context.Background(), seeded[2].ID, ReorderRequest{})
	require.NoError(t, err)

	col := f.column(t, models.StatusTodo)
	byTitle := map[string]*models.Ticket{}
	for _, ticket := range col {
		byTitle[ticket.Title] = ticket
	}
	assert.True(t, seeded[0].UpdatedAt.Equal(byTitle["A"].UpdatedAt))
	assert.Equal(t, 1000.0, byTitle["A"].Position)
	assert.True(t, seeded[1].UpdatedAt.Equal(byTitle["B"].UpdatedAt))
	assert.True(t, byTitle["C"].UpdatedAt.After(seeded[2].UpdatedAt))
}

func TestReorderTicket_GapExhausted(t *testing.T) {
	t.Parallel()
	f := setup(t)
	f.seed(t, models.StatusTodo, []string{"A", "B", "X"}, []float64{1.0001, 1.0009, 5000})
	mover := f.column(t, models.StatusTodo)[2]

	for _, target := range []float64{1.0005, 1.0001, 1.0002} {
		_, err := f.svc.ReorderTicket(context.Background(), mover.ID, ReorderRequest{Position: ptr(target)})
		assert.ErrorIs(t, err, ErrPositionGapExhausted, "target %v", target)
		assert.NotErrorIs(t, err, ErrTicketNotFound)
	}

	// Nothing was written
	col := f.column(t, models.StatusTodo)
	assert.Equal(t, []string{"A", "B", "X"}, titlesOf(col))
	assert.Equal(t, 5000.0, col[2].Position)
	assert.Empty(t, f.publisher.events())
}

func TestReorderTicket_RepeatedTopMovesEventuallyExhaust(t *testing.T) {
	t.Parallel()
	f := setup(t)
	f.seed(t, models.StatusTodo, []string{"A", "B"}, []float64{1000, 2000})

	var exhausted bool
	for i := 0; i < 64; i++ {
		col := f.column(t, models.StatusTodo)
		bottom := col[len(col)-1]

		_, err := f.svc.ReorderTicket(context.Background(), bottom.ID, ReorderRequest{})
		if err != nil {
			require.ErrorIs(t, err, ErrPositionGapExhausted)
			exhausted = true
			break
		}

		after := f.column(t, models.StatusTodo)
		require.Equal(t, bottom.ID, after[0].ID, "moved ticket must sort first")
		require.NotEqual(t, after[0].Position, after[1].Position)
	}

	assert.True(t, exhausted, "halving the top slot must run out of room")
}

func TestReorderTicket_TopSlotOverDenseColumnIsExhausted(t *testing.T) {
	t.Parallel()
	f := setup(t)
	f.seed(t, models.StatusTodo, []string{"A", "B"}, []float64{0, 1})
	other := f.seed(t, models.StatusDone, []string{"X"}, []float64{1000})

	_, err := f.svc.ReorderTicket(context.Background(), other[0].ID, ReorderRequest{Status: ptr(models.StatusTodo)})
	assert.ErrorIs(t, err, ErrPositionGapExhausted)
}

func TestReorderTicket_AutoRebalanceRecovers(t *testing.T) {
	t.Parallel()
	f := setup(t, WithAutoRebalance(true))
	f.seed(t, models.StatusTodo, []string{"A", "B"}, []float64{0.001, 0.0015})
	other := f.seed(t, models.StatusDone, []string{"X"}, []float64{1000})

	ticket, err := f.svc.ReorderTicket(context.Background(), other[0].ID, ReorderRequest{Status: ptr(models.StatusTodo)})
	require.NoError(t, err)

	assert.Equal(t, models.StatusTodo, ticket.Status)
	assert.Equal(t, 500.0, ticket.Position)

	col := f.column(t, models.StatusTodo)
	assert.Equal(t, []string{"X", "A", "B"}, titlesOf(col))
	assert.Equal(t, []float64{500, 1000, 2000}, []float64{col[0].Position, col[1].Position, col[2].Position})
}

func TestReorderTicket_WithoutAutoRebalanceSurfacesConflict(t *testing.T) {
	t.Parallel()
	f := setup(t)
	f.seed(t, models.StatusTodo, []string{"A", "B"}, []float64{0.001, 0.0015})
	other := f.seed(t, models.StatusDone, []string{"X"}, []float64{1000})

	_, err := f.svc.ReorderTicket(context.Background(), other[0].ID, ReorderRequest{Status: ptr(models.StatusTodo)})
	require.ErrorIs(t, err, ErrPositionGapExhausted)

	// Caller-driven recovery: rebalance, then retry
	require.NoError(t, f.svc.RebalanceColumn(context.Background(), f.project.ID, models.StatusTodo))
	ticket, err := f.svc.ReorderTicket(context.Background(), other[0].ID, ReorderRequest{Status: ptr(models.StatusTodo)})
	require.NoError(t, err)
	assert.Equal(t, 500.0, ticket.Position)
}

func TestReorderTicket_NotFound(t *testing.T) {
	t.Parallel()
	f := setup(t)

	_, err := f.svc.ReorderTicket(context.Background(), uuid.NewString(), ReorderRequest{})
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestReorderTicket_Validation(t *testing.T) {
	t.Parallel()
	f := setup(t)
	seeded := f.seed(t, models.StatusTodo, []string{"A"}, []float64{1000})

	tests := []struct {
		name string
		id   string
		req  ReorderRequest
	}{
		{"malformed id", "abc", ReorderRequest{}},
		{"zero position", seeded[0].ID, ReorderRequest{Position: ptr(0.0)}},
		{"negative position", seeded[0].ID, ReorderRequest{Position: ptr(-3.0)}},
		{"unknown status", seeded[0].ID, ReorderRequest{Status: ptr(models.Status("ARCHIVED"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ReorderTicket(context.Background(), tt.id, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPlanReorder(t *testing.T) {
	t.Parallel()

	column := func(positions ...float64) []*models.Ticket {
		out := make([]*models.Ticket, len(positions))
		for i, p := range positions {
			out[i] = &models.Ticket{ID: uuid.NewString(), Position: p}
		}
		return out
	}

	tests := []struct {
		name      string
		others    []*models.Ticket
		requested *float64
		want      float64
		nudged    bool
		exhausted bool
	}{
		{name: "empty column top", others: nil, want: position.Gap},
		{name: "empty column explicit", others: nil, requested: ptr(7.0), want: 7},
		{name: "top halves minimum", others: column(800, 900), want: 400},
		{name: "between", others: column(1, 3), requested: ptr(2.0), want: 2},
		{name: "after last", others: column(1, 3), requested: ptr(9.0), want: 9},
		{name: "collision", others: column(1000, 1500), requested: ptr(1500.0), want: 1500.001, nudged: true},
		{name: "collision squeezed", others: column(1, 1.0015), requested: ptr(1.0), exhausted: true},
		{name: "double collision", others: column(5, 5.001), requested: ptr(5.0), exhausted: true},
		{name: "too close below", others: column(1.0001, 1.0009), requested: ptr(1.0005), exhausted: true},
		{name: "too close above", others: column(2), requested: ptr(1.9995), exhausted: true},
		{name: "top over zero", others: column(0, 1), exhausted: true},
		{name: "top over tiny", others: column(0.0015), exhausted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planReorder(tt.others, tt.requested)
			if tt.exhausted {
				assert.ErrorIs(t, err, ErrPositionGapExhausted)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, plan.target, 1e-9)
			assert.Equal(t, tt.nudged, plan.nudged)
		})
	}
}

func TestReorderTicket_PerCallAutoRebalanceOverridesDefault(t *testing.T) {
	t.Parallel()

	t.Run("enable on a service without auto rebalance", func(t *testing.T) {
		t.Parallel()
		f := setup(t)
		f.seed(t, models.StatusTodo, []string{"A", "B", "C"}, []float64{0, 1, 2})

		col := f.column(t, models.StatusTodo)
		ticket, err := f.svc.ReorderTicket(context.Background(), col[2].ID, ReorderRequest{AutoRebalance: ptr(true)})
		require.NoError(t, err)

		assert.Equal(t, 500.0, ticket.Position)
		assert.Equal(t, []string{"C", "A", "B"}, titlesOf(f.column(t, models.StatusTodo)))
	})

	t.Run("disable on a service with auto rebalance", func(t *testing.T) {
		t.Parallel()
		f := setup(t, WithAutoRebalance(true))
		seeded := f.seed(t, models.StatusTodo, []string{"A", "B", "C"}, []float64{0, 1, 2})

		_, err := f.svc.ReorderTicket(context.Background(), seeded[2].ID, ReorderRequest{AutoRebalance: ptr(false)})
		require.ErrorIs(t, err, ErrPositionGapExhausted)
		assert.Equal(t, []float64{0, 1, 2}, testutil.Positions(f.column(t, models.StatusTodo)))
	})
}
