package ticket

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/position"
)

// CreateTicket validates the request and appends the ticket to the bottom of
// its column unless an explicit position is given.
func (s *service) CreateTicket(ctx context.Context, req CreateTicketRequest) (*models.Ticket, error) {
	req = withCreateDefaults(req)
	if err := validateCreateTicket(req); err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &models.Ticket{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		Source:      req.Source,
		SourceURL:   req.SourceURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		if err := requireProject(ctx, tx, req.ProjectID); err != nil {
			return err
		}

		pos, err := assignPosition(ctx, tx, ticket.Column(), req.Position)
		if err != nil {
			return err
		}
		ticket.Position = pos

		return tx.Insert(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("ticket created",
		"ticket_id", ticket.ID,
		"project_id", ticket.ProjectID,
		"status", ticket.Status,
		"position", ticket.Position,
		"explicit", req.Position != nil)

	s.publish(ticket.ProjectID, ticket.ID, ticket.Status)
	return ticket, nil
}

// assignPosition returns the explicit key verbatim, otherwise max+Gap, or
// Gap for an empty column. Concurrent creations may still collide; reorder
// and rebalance resolve that later.
func assignPosition(ctx context.Context, tx database.Tx, col models.Column, explicit *float64) (float64, error) {
	if explicit != nil {
		return *explicit, nil
	}

	last, err := tx.FindOne(ctx, database.ColumnFilter(col),
		database.OrderBy{Field: database.SortPosition, Desc: true})
	if errors.Is(err, database.ErrNotFound) {
		return position.Fresh(), nil
	}
	if err != nil {
		return 0, err
	}
	return position.After(last.Position), nil
}

func withCreateDefaults(req CreateTicketRequest) CreateTicketRequest {
	if req.Status == "" {
		req.Status = models.DefaultStatus
	}
	if req.Priority == "" {
		req.Priority = models.DefaultPriority
	}
	if req.Source == "" {
		req.Source = models.DefaultSource
	}
	return req
}

func validateCreateTicket(req CreateTicketRequest) error {
	if err := validateID("project id", req.ProjectID); err != nil {
		return err
	}
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if err := validateDescription(req.Description); err != nil {
		return err
	}
	if err := validateStatus(req.Status); err != nil {
		return err
	}
	if err := validatePriority(req.Priority); err != nil {
		return err
	}
	if err := validateAssignee(req.AssigneeID); err != nil {
		return err
	}
	if len(req.SourceURL) > maxSourceURLLength {
		return invalid("source url", "cannot exceed %d characters", maxSourceURLLength)
	}
	if req.Position != nil {
		if err := validatePosition(*req.Position); err != nil {
			return err
		}
	}
	return nil
}
