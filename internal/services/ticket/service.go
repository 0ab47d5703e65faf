package ticket

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/events"
	"github.com/thenoetrevino/lanes/internal/models"
)

// Service defines all ticket-related business operations
type Service interface {
	// Read operations
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	ListTickets(ctx context.Context, req ListTicketsRequest) (*TicketPage, error)
	Board(ctx context.Context, projectID string) (Board, error)

	// Write operations
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, req UpdateTicketRequest) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error

	// Ordering
	ReorderTicket(ctx context.Context, id string, req ReorderRequest) (*models.Ticket, error)
	MoveTicket(ctx context.Context, id string, req MoveRequest) (*models.Ticket, error)
	RebalanceColumn(ctx context.Context, projectID string, status models.Status) error
	RebalanceProject(ctx context.Context, projectID string) error
}

// CreateTicketRequest encapsulates all data needed to create a ticket
type CreateTicketRequest struct {
	ProjectID   string
	Title       string
	Description string
	Status      models.Status   // Optional: "" means TODO
	Priority    models.Priority // Optional: "" means MEDIUM
	AssigneeID  string
	Source      string // Optional: "" means MANUAL
	SourceURL   string
	// Position overrides the append-to-bottom key. Used verbatim.
	Position *float64
}

// UpdateTicketRequest encapsulates the descriptive fields of a ticket.
// Fields with pointers are optional - nil means don't update. Status and
// position only change through ReorderTicket and MoveTicket.
type UpdateTicketRequest struct {
	ID          string
	Title       *string
	Description *string
	Priority    *models.Priority
	AssigneeID  *string
}

// ReorderRequest targets an absolute key. A nil Position means "top of the column".
type ReorderRequest struct {
	Status   *models.Status
	Position *float64
	// AutoRebalance overrides WithAutoRebalance for this call. nil keeps the service default.
	AutoRebalance *bool
}

// MoveRequest targets a 0-based slot within the destination column
type MoveRequest struct {
	Status models.Status
	Index  int
}

// Option customizes the service
type Option func(*service)

// WithClock replaces time.Now, mainly for deterministic tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithAutoRebalance makes ReorderTicket rebalance the target column and retry
// once when the gap at the requested spot is exhausted
func WithAutoRebalance(enabled bool) Option {
	return func(s *service) {
		s.autoRebalance = enabled
	}
}

// WithLogger sets the logger used for ordering decisions
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// service implements Service interface
type service struct {
	repo          database.ColumnStore
	eventClient   events.EventPublisher
	now           func() time.Time
	autoRebalance bool
	logger        *slog.Logger
	metrics       *engineMetrics
}

// NewService creates a new ticket service
func NewService(repo database.ColumnStore, eventClient events.EventPublisher, opts ...Option) Service {
	s := &service{
		repo:        repo,
		eventClient: eventClient,
		now:         time.Now,
		logger:      slog.Default(),
		metrics:     newEngineMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTicket retrieves a single ticket
func (s *service) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	if err := validateID("ticket id", id); err != nil {
		return nil, err
	}

	var ticket *models.Ticket
	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		var err error
		ticket, err = tx.FindOne(ctx, database.TicketFilter{ID: &id})
		return notFound(err, ErrTicketNotFound)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateTicket changes descriptive fields and returns the updated ticket
func (s *service) UpdateTicket(ctx context.Context, req UpdateTicketRequest) (*models.Ticket, error) {
	if err := s.validateUpdateTicket(req); err != nil {
		return nil, err
	}

	now := s.now()
	fields := database.TicketFields{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		UpdatedAt:   &now,
	}

	var ticket *models.Ticket
	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		if err := tx.UpdateMany(ctx, []database.TicketUpdate{{ID: req.ID, Fields: fields}}); err != nil {
			return notFound(err, ErrTicketNotFound)
		}
		var err error
		ticket, err = tx.FindOne(ctx, database.TicketFilter{ID: &req.ID})
		return notFound(err, ErrTicketNotFound)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ticket.ProjectID, ticket.ID, ticket.Status)
	return ticket, nil
}

func (s *service) validateUpdateTicket(req UpdateTicketRequest) error {
	if err := validateID("ticket id", req.ID); err != nil {
		return err
	}
	if req.Title == nil && req.Description == nil && req.Priority == nil && req.AssigneeID == nil {
		return invalid("update", "at least one field must be provided")
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return err
		}
	}
	if req.Priority != nil {
		if err := validatePriority(*req.Priority); err != nil {
			return err
		}
	}
	if req.AssigneeID != nil {
		if err := validateAssignee(*req.AssigneeID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTicket removes a ticket. The column keeps its gap until the next
// move or rebalance.
func (s *service) DeleteTicket(ctx context.Context, id string) error {
	if err := validateID("ticket id", id); err != nil {
		return err
	}

	var deleted *models.Ticket
	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		var err error
		deleted, err = tx.FindOne(ctx, database.TicketFilter{ID: &id})
		if err != nil {
			return notFound(err, ErrTicketNotFound)
		}
		return notFound(tx.Delete(ctx, id), ErrTicketNotFound)
	})
	if err != nil {
		return err
	}

	s.publish(deleted.ProjectID, deleted.ID, deleted.Status)
	return nil
}

// publish notifies the daemon that columns of a project changed.
// Failures are logged by PublishWithRetry and never fail the mutation.
func (s *service) publish(projectID, ticketID string, statuses ...models.Status) {
	if s.eventClient == nil {
		return
	}

	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, string(st))
	}

	_ = events.PublishWithRetry(s.eventClient, events.Event{
		Type:      events.EventColumnChanged,
		ProjectID: projectID,
		Statuses:  names,
		TicketID:  ticketID,
		Timestamp: s.now(),
	}, 3)
}

// loadTicket fetches the ticket inside tx, translating not-found
func loadTicket(ctx context.Context, tx database.Tx, id string) (*models.Ticket, error) {
	t, err := tx.FindOne(ctx, database.TicketFilter{ID: &id})
	if err != nil {
		return nil, notFound(err, ErrTicketNotFound)
	}
	return t, nil
}

// requireProject fails with ErrProjectNotFound unless the project exists
func requireProject(ctx context.Context, tx database.Tx, projectID string) error {
	if _, err := tx.GetProject(ctx, projectID); err != nil {
		if nf := notFound(err, ErrProjectNotFound); nf == ErrProjectNotFound {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		return err
	}
	return nil
}
