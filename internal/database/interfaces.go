package database

import (
	"context"
	"time"

	"github.com/thenoetrevino/lanes/internal/models"
)

// Tx is the view of the ticket table available inside one transaction.
// Every read sees the same snapshot as every later write.
type Tx interface {
	// FindMany is an ordered range scan
	FindMany(ctx context.Context, filter TicketFilter, order ...OrderBy) ([]*models.Ticket, error)

	// FindOne returns the first match in the given order, or ErrNotFound
	FindOne(ctx context.Context, filter TicketFilter, order ...OrderBy) (*models.Ticket, error)

	Count(ctx context.Context, filter TicketFilter) (int, error)
	Insert(ctx context.Context, ticket *models.Ticket) error

	// UpdateMany applies every update or, via the surrounding transaction, none
	UpdateMany(ctx context.Context, updates []TicketUpdate) error

	Delete(ctx context.Context, id string) error

	// GetProject returns ErrNotFound when the project does not exist
	GetProject(ctx context.Context, id string) (*models.Project, error)

	// UpdateProject returns ErrNotFound for a missing project and
	// ErrDuplicateKey when the key belongs to another project
	UpdateProject(ctx context.Context, project *models.Project) error

	// DeleteProject removes the project and every ticket in it
	DeleteProject(ctx context.Context, id string) error
}

// ColumnStore runs ticket work inside serializable transactions
type ColumnStore interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// ProjectStore holds the projects that partition columns
type ProjectStore interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// DataStore defines the unified interface for all data operations.
// Consumers can depend on the smaller interfaces for clearer dependencies.
type DataStore interface {
	ColumnStore
	ProjectStore
	Close() error
}

// TicketFields lists the columns an update may touch; nil fields are left alone
type TicketFields struct {
	Status      *models.Status
	Position    *float64
	Title       *string
	Description *string
	Priority    *models.Priority
	AssigneeID  *string
	UpdatedAt   *time.Time
}

// TicketUpdate is one row of a batched update
type TicketUpdate struct {
	ID     string
	Fields TicketFields
}

// Placement builds the update that sets a ticket's column and key together
func Placement(id string, status models.Status, pos float64, at time.Time) TicketUpdate {
	return TicketUpdate{
		ID: id,
		Fields: TicketFields{
			Status:    &status,
			Position:  &pos,
			UpdatedAt: &at,
		},
	}
}

// Compile-time verification that *Store implements DataStore
var _ DataStore = (*Store)(nil)
