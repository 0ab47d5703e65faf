package ticket

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/position"
)

// ReorderTicket places a ticket at an absolute key, or at the top of the
// target column when no position is given. Only the moving ticket is written.
func (s *service) ReorderTicket(ctx context.Context, id string, req ReorderRequest) (*models.Ticket, error) {
	if err := validateReorder(id, req); err != nil {
		return nil, err
	}

	ctx, span := s.metrics.start(ctx, "reorder", attribute.String("lanes.ticket.id", id))
	ticket, err := s.reorderWithRecovery(ctx, id, req)
	s.metrics.end(span, err)
	return ticket, err
}

func (s *service) reorderWithRecovery(ctx context.Context, id string, req ReorderRequest) (*models.Ticket, error) {
	auto := s.autoRebalance
	if req.AutoRebalance != nil {
		auto = *req.AutoRebalance
	}

	ticket, from, col, err := s.reorder(ctx, id, req)
	if errors.Is(err, ErrPositionGapExhausted) && auto {
		s.logger.Info("gap exhausted, rebalancing column before retry",
			"ticket_id", id,
			"project_id", col.ProjectID,
			"status", col.Status)
		s.metrics.autoRebalances.Add(ctx, 1)

		if _, rerr := s.rebalance(ctx, col); rerr != nil {
			return nil, fmt.Errorf("auto rebalance failed: %w", rerr)
		}
		ticket, from, col, err = s.reorder(ctx, id, req)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ticket.ProjectID, ticket.ID, statusesOf(from, col.Status)...)
	return ticket, nil
}

// reorder runs one attempt. The target column is returned even on failure
// so the caller can rebalance it.
func (s *service) reorder(ctx context.Context, id string, req ReorderRequest) (*models.Ticket, models.Status, models.Column, error) {
	var (
		ticket *models.Ticket
		from   models.Status
		col    models.Column
		plan   reorderPlan
	)

	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		var err error
		ticket, err = loadTicket(ctx, tx, id)
		if err != nil {
			return err
		}
		from = ticket.Status

		col = ticket.Column()
		if req.Status != nil {
			col.Status = *req.Status
		}

		others, err := tx.FindMany(ctx, database.ColumnFilter(col).Without(id), database.ColumnOrder...)
		if err != nil {
			return err
		}

		plan, err = planReorder(others, req.Position)
		if err != nil {
			return err
		}

		now := s.now()
		if err := tx.UpdateMany(ctx, []database.TicketUpdate{
			database.Placement(id, col.Status, plan.target, now),
		}); err != nil {
			return notFound(err, ErrTicketNotFound)
		}

		ticket.Status = col.Status
		ticket.Position = plan.target
		ticket.UpdatedAt = now
		return nil
	})

	// Recorded once per attempt, after the transaction settles
	switch {
	case errors.Is(err, ErrPositionGapExhausted):
		s.metrics.reorders.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "gap_exhausted")))
		s.logger.Warn("reorder rejected",
			"ticket_id", id,
			"project_id", col.ProjectID,
			"status", col.Status,
			"error", err)
	case err == nil:
		outcome := "ok"
		if plan.nudged {
			outcome = "nudged"
			s.logger.Debug("position collision, nudged",
				"ticket_id", id,
				"requested", *req.Position,
				"position", plan.target)
		}
		s.metrics.reorders.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		s.metrics.wrote(ctx, "reorder", 1)
	}

	return ticket, from, col, err
}

type reorderPlan struct {
	target float64
	nudged bool
}

// planReorder computes the key for the moving ticket given the other tickets
// of the target column in order. Nothing is written when it fails.
func planReorder(others []*models.Ticket, requested *float64) (reorderPlan, error) {
	var target float64

	if requested == nil {
		if len(others) == 0 {
			return reorderPlan{target: position.Fresh()}, nil
		}
		top := others[0].Position
		if !position.CanSplit(0, top) {
			return reorderPlan{}, fmt.Errorf("%w: no room above %v", ErrPositionGapExhausted, top)
		}
		target = position.Before(top)
	} else {
		target = *requested
	}

	plan := reorderPlan{target: target}
	for _, o := range others {
		if o.Position == target {
			plan.target = position.Nudge(target)
			plan.nudged = true
			break
		}
	}

	lower, higher := neighbours(others, plan.target)
	if lower != nil && !position.CanSplit(lower.Position, plan.target) {
		return reorderPlan{}, fmt.Errorf("%w: %v is too close to %v", ErrPositionGapExhausted, plan.target, lower.Position)
	}
	if higher != nil && !position.CanSplit(plan.target, higher.Position) {
		return reorderPlan{}, fmt.Errorf("%w: %v is too close to %v", ErrPositionGapExhausted, plan.target, higher.Position)
	}

	return plan, nil
}

// neighbours returns the last ticket at or below p and the first ticket above p
func neighbours(ordered []*models.Ticket, p float64) (lower, higher *models.Ticket) {
	for _, t := range ordered {
		if t.Position <= p {
			lower = t
			continue
		}
		higher = t
		break
	}
	return lower, higher
}

func validateReorder(id string, req ReorderRequest) error {
	if err := validateID("ticket id", id); err != nil {
		return err
	}
	if req.Status != nil {
		if err := validateStatus(*req.Status); err != nil {
			return err
		}
	}
	if req.Position != nil {
		if err := validatePosition(*req.Position); err != nil {
			return err
		}
	}
	return nil
}

func statusesOf(from, to models.Status) []models.Status {
	if from == "" || from == to {
		return []models.Status{to}
	}
	return []models.Status{from, to}
}
