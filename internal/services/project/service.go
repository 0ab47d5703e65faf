package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/events"
	"github.com/thenoetrevino/lanes/internal/models"
)

const (
	maxNameLength = 100
	minKeyLength  = 2
	maxKeyLength  = 10
)

// Service defines all project-related business operations
type Service interface {
	// Read operations
	ListProjects(ctx context.Context) ([]*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	TicketCount(ctx context.Context, id string) (int, error)

	// Write operations
	CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error)
	UpdateProject(ctx context.Context, req UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, req DeleteProjectRequest) error
}

// CreateProjectRequest encapsulates data for creating a project
type CreateProjectRequest struct {
	Name string
	// Key is stored uppercased and must be unique across projects
	Key         string
	Description string
}

// UpdateProjectRequest encapsulates data for updating a project.
// Nil fields are left unchanged.
type UpdateProjectRequest struct {
	ID          string
	Name        *string
	Key         *string
	Description *string
}

// DeleteProjectRequest names the project to remove. Without Force a project
// that still holds tickets is left alone.
type DeleteProjectRequest struct {
	ID    string
	Force bool
}

// repository is the slice of the store the project service needs
type repository interface {
	database.ProjectStore
	database.ColumnStore
}

// service implements Service interface
type service struct {
	repo        repository
	eventClient events.EventPublisher
	now         func() time.Time
}

// Option customizes the service
type Option func(*service)

// WithClock replaces time.Now, mainly for deterministic tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a new project service
func NewService(repo repository, eventClient events.EventPublisher, opts ...Option) Service {
	s := &service{
		repo:        repo,
		eventClient: eventClient,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProjects retrieves all projects, newest first
func (s *service) ListProjects(ctx context.Context) ([]*models.Project, error) {
	return s.repo.ListProjects(ctx)
}

// GetProject retrieves a specific project
func (s *service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	project, err := s.repo.GetProject(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	return project, err
}

// TicketCount returns the number of tickets across every column of a project
func (s *service) TicketCount(ctx context.Context, id string) (int, error) {
	if err := validateID(id); err != nil {
		return 0, err
	}

	var count int
	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		if _, err := tx.GetProject(ctx, id); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		var err error
		count, err = tx.Count(ctx, database.TicketFilter{ProjectID: &id})
		return err
	})
	return count, err
}

// CreateProject creates a new project with validation
func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	key, err := normalizeKey(req.Key)
	if err != nil {
		return nil, err
	}

	now := s.now()
	project := &models.Project{
		ID:          uuid.NewString(),
		Key:         key,
		Name:        name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrProjectKeyExists, key)
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	// Publish event after successful commit
	s.publishProjectEvent(project.ID)

	return project, nil
}

// UpdateProject applies the non-nil fields of req
func (s *service) UpdateProject(ctx context.Context, req UpdateProjectRequest) (*models.Project, error) {
	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	if req.Name == nil && req.Key == nil && req.Description == nil {
		return nil, ErrNoUpdates
	}

	var name, key string
	var err error
	if req.Name != nil {
		if name, err = normalizeName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Key != nil {
		if key, err = normalizeKey(*req.Key); err != nil {
			return nil, err
		}
	}

	var project *models.Project
	err = s.repo.WithTx(ctx, func(tx database.Tx) error {
		p, err := tx.GetProject(ctx, req.ID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			p.Name = name
		}
		if req.Key != nil {
			p.Key = key
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		p.UpdatedAt = s.now()
		if err := tx.UpdateProject(ctx, p); err != nil {
			return err
		}
		project = p
		return nil
	})
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil, ErrProjectNotFound
	case errors.Is(err, database.ErrDuplicateKey):
		return nil, fmt.Errorf("%w: %s", ErrProjectKeyExists, key)
	case err != nil:
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.publishProjectEvent(project.ID)

	return project, nil
}

// DeleteProject deletes a project together with its tickets. Without Force
// the emptiness check and the delete share one transaction.
func (s *service) DeleteProject(ctx context.Context, req DeleteProjectRequest) error {
	if err := validateID(req.ID); err != nil {
		return err
	}

	err := s.repo.WithTx(ctx, func(tx database.Tx) error {
		if !req.Force {
			count, err := tx.Count(ctx, database.TicketFilter{ProjectID: &req.ID})
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w (%d tickets, use --force)", ErrProjectHasTickets, count)
			}
		}
		return tx.DeleteProject(ctx, req.ID)
	})
	if errors.Is(err, database.ErrNotFound) {
		return ErrProjectNotFound
	}
	if err != nil {
		if errors.Is(err, ErrProjectHasTickets) {
			return err
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	// Publish event after successful deletion
	s.publishProjectEvent(req.ID)

	return nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrEmptyName
	}
	if len(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func normalizeKey(raw string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if n := len(key); n < minKeyLength || n > maxKeyLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, raw)
	}
	return key, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProjectID, id)
	}
	return nil
}

// publishProjectEvent publishes a project event
func (s *service) publishProjectEvent(projectID string) {
	if s.eventClient == nil {
		return
	}

	_ = events.PublishWithRetry(s.eventClient, events.Event{
		Type:      events.EventProjectChanged,
		ProjectID: projectID,
		Timestamp: s.now(),
	}, 3)
}
