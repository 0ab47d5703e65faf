package ticket

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/position"
)

// RebalanceColumn respaces a column to Gap, 2*Gap, ... keeping its order.
// Running it twice leaves the second run with nothing to write.
func (s *service) RebalanceColumn(ctx context.Context, projectID string, status models.Status) error {
	if err := validateID("project id", projectID); err != nil {
		return err
	}
	if err := validateStatus(status); err != nil {
		return err
	}

	written, err := s.rebalance(ctx, models.Column{ProjectID: projectID, Status: status})
	if err != nil {
		return err
	}
	if written > 0 {
		s.publish(projectID, "", status)
	}
	return nil
}

// RebalanceProject rebalances every column of a project, each in its own transaction
func (s *service) RebalanceProject(ctx context.Context, projectID string) error {
	if err := validateID("project id", projectID); err != nil {
		return err
	}

	written := make([]int, len(models.AllStatuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range models.AllStatuses {
		g.Go(func() error {
			n, err := s.rebalance(gctx, models.Column{ProjectID: projectID, Status: status})
			written[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var touched []models.Status
	for i, n := range written {
		if n > 0 {
			touched = append(touched, models.AllStatuses[i])
		}
	}
	if len(touched) > 0 {
		s.publish(projectID, "", touched...)
	}
	return nil
}

// rebalance rewrites one column and reports how many rows changed
func (s *service) rebalance(ctx context.Context, col models.Column) (int, error) {
	ctx, span := s.metrics.start(ctx, "rebalance",
		attribute.String("lanes.project.id", col.ProjectID),
		attribute.String("lanes.ticket.status", string(col.Status)))

	var written int
	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		written = 0
		if err := requireProject(ctx, tx, col.ProjectID); err != nil {
			return err
		}

		tickets, err := tx.FindMany(ctx, database.ColumnFilter(col), database.ColumnOrder...)
		if err != nil {
			return err
		}

		now := s.now()
		var updates []database.TicketUpdate
		for i, t := range tickets {
			pos := position.Spaced(i)
			if t.Position == pos {
				continue
			}
			updates = append(updates, database.Placement(t.ID, col.Status, pos, now))
		}

		if len(updates) > 0 {
			if err := tx.UpdateMany(ctx, updates); err != nil {
				return err
			}
		}
		written = len(updates)

		s.logger.Debug("column rebalanced",
			"project_id", col.ProjectID,
			"status", col.Status,
			"tickets", len(tickets),
			"rows_written", written)
		return nil
	})
	s.metrics.end(span, err)
	if err != nil {
		return 0, err
	}

	s.metrics.rebalances.Add(ctx, 1)
	s.metrics.wrote(ctx, "rebalance", written)
	return written, nil
}
