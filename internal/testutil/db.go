package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"

	_ "modernc.org/sqlite"
)

// BaseTime anchors seeded timestamps so created_at tie-breaks are predictable
var BaseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SetupTestDB creates an in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	// Every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(context.Background(), "PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := database.MigrateSQLite(context.Background(), db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return db
}

// SetupTestStore wraps SetupTestDB in a Store
func SetupTestStore(t *testing.T) *database.Store {
	t.Helper()
	return database.NewSQLiteStore(SetupTestDB(t))
}

// SetupFileStore opens a file-backed store the way the CLI does, so
// transactions from different goroutines really contend
func SetupFileStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(context.Background(), database.Options{
		Path:            filepath.Join(t.TempDir(), "lanes.db"),
		RetryMaxElapsed: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// ProjectKey derives a unique key for a seeded project
func ProjectKey(id string) string {
	return "T" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

// CreateTestProject inserts a project and returns it
func CreateTestProject(t *testing.T, store database.ProjectStore, name string) *models.Project {
	t.Helper()
	id := uuid.NewString()
	project := &models.Project{
		ID:        id,
		Key:       ProjectKey(id),
		Name:      name,
		CreatedAt: BaseTime,
		UpdatedAt: BaseTime,
	}
	if err := store.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return project
}

// SeedTicket inserts a ticket at an explicit position. created_at is BaseTime
// plus offset so seeds keep a known tie-break order.
func SeedTicket(t *testing.T, store database.ColumnStore, projectID string, status models.Status, title string, pos float64, offset time.Duration) *models.Ticket {
	t.Helper()
	ticket := &models.Ticket{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Status:    status,
		Priority:  models.DefaultPriority,
		Source:    models.DefaultSource,
		Position:  pos,
		CreatedAt: BaseTime.Add(offset),
		UpdatedAt: BaseTime.Add(offset),
	}
	err := store.WithTx(context.Background(), func(tx database.Tx) error {
		return tx.Insert(context.Background(), ticket)
	})
	if err != nil {
		t.Fatalf("Failed to seed ticket %q: %v", title, err)
	}
	return ticket
}

// SeedColumn inserts one ticket per title at the given positions, in order
func SeedColumn(t *testing.T, store database.ColumnStore, projectID string, status models.Status, titles []string, positions []float64) []*models.Ticket {
	t.Helper()
	if len(titles) != len(positions) {
		t.Fatalf("SeedColumn: %d titles but %d positions", len(titles), len(positions))
	}
	tickets := make([]*models.Ticket, len(titles))
	for i, title := range titles {
		tickets[i] = SeedTicket(t, store, projectID, status, title, positions[i], time.Duration(i)*time.Second)
	}
	return tickets
}

// ColumnTickets returns a column in canonical order
func ColumnTickets(t *testing.T, store database.ColumnStore, projectID string, status models.Status) []*models.Ticket {
	t.Helper()
	var tickets []*models.Ticket
	err := store.WithTx(context.Background(), func(tx database.Tx) error {
		var err error
		tickets, err = tx.FindMany(context.Background(),
			database.ColumnFilter(models.Column{ProjectID: projectID, Status: status}),
			database.ColumnOrder...)
		return err
	})
	if err != nil {
		t.Fatalf("Failed to load column %s: %v", status, err)
	}
	return tickets
}

// Titles extracts ticket titles, handy for asserting order
func Titles(tickets []*models.Ticket) []string {
	out := make([]string, len(tickets))
	for i, ticket := range tickets {
		out[i] = ticket.Title
	}
	return out
}

// Positions extracts ticket positions in order
func Positions(tickets []*models.Ticket) []float64 {
	out := make([]float64, len(tickets))
	for i, ticket := range tickets {
		out[i] = ticket.Position
	}
	return out
}
