package ticket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/position"
)

// MoveTicket puts a ticket at a 0-based slot of the destination column and
// compacts every affected column to dense keys 0..n-1.
func (s *service) MoveTicket(ctx context.Context, id string, req MoveRequest) (*models.Ticket, error) {
	if err := validateID("ticket id", id); err != nil {
		return nil, err
	}
	if err := validateStatus(req.Status); err != nil {
		return nil, err
	}

	ctx, span := s.metrics.start(ctx, "move",
		attribute.String("lanes.ticket.id", id),
		attribute.String("lanes.ticket.status", string(req.Status)),
		attribute.Int("lanes.move.index", req.Index))

	var (
		ticket  *models.Ticket
		from    models.Status
		kind    string
		written int
	)
	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		var err error
		ticket, err = loadTicket(ctx, tx, id)
		if err != nil {
			return err
		}
		from = ticket.Status

		source, err := tx.FindMany(ctx, database.ColumnFilter(ticket.Column()).Without(id), database.ColumnOrder...)
		if err != nil {
			return err
		}

		now := s.now()
		var updates []database.TicketUpdate
		kind = "same_column"

		if req.Status == ticket.Status {
			updates = compact(insertAt(source, ticket, req.Index), ticket.Status, now)
		} else {
			kind = "cross_column"
			// Close the hole left in the source column
			updates = compact(source, ticket.Status, now)

			dest := models.Column{ProjectID: ticket.ProjectID, Status: req.Status}
			destTickets, err := tx.FindMany(ctx, database.ColumnFilter(dest).Without(id), database.ColumnOrder...)
			if err != nil {
				return err
			}
			updates = append(updates, compact(insertAt(destTickets, ticket, req.Index), req.Status, now)...)
		}

		if len(updates) > 0 {
			if err := tx.UpdateMany(ctx, updates); err != nil {
				return notFound(err, ErrTicketNotFound)
			}
		}

		written = len(updates)
		return nil
	})
	s.metrics.end(span, err)
	if err != nil {
		return nil, err
	}

	s.metrics.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	s.metrics.wrote(ctx, "move", written)
	s.logger.Debug("ticket moved",
		"ticket_id", id,
		"from", from,
		"to", req.Status,
		"index", req.Index,
		"position", ticket.Position,
		"rows_written", written)

	s.publish(ticket.ProjectID, ticket.ID, statusesOf(from, ticket.Status)...)
	return ticket, nil
}

// insertAt returns a new slice with t at index, clamped into [0, len(list)]
func insertAt(list []*models.Ticket, t *models.Ticket, index int) []*models.Ticket {
	index = max(0, min(index, len(list)))

	out := make([]*models.Ticket, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, t)
	return append(out, list[index:]...)
}

// compact assigns dense keys 0..n-1 and the column status to the ordered list,
// updating the tickets in place so the caller sees the final placement.
// Rows already in place are skipped.
func compact(ordered []*models.Ticket, status models.Status, now time.Time) []database.TicketUpdate {
	var updates []database.TicketUpdate
	for i, t := range ordered {
		pos := position.Dense(i)
		if t.Position == pos && t.Status == status {
			continue
		}
		t.Position = pos
		t.Status = status
		t.UpdatedAt = now
		updates = append(updates, database.Placement(t.ID, status, pos, now))
	}
	return updates
}
