package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/lanes/internal/models"

	_ "modernc.org/sqlite"
)

// ============================================================================
// Local Test Helpers (to avoid import cycle with testutil)
// ============================================================================

var testBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// setupTestStore creates an in-memory database and runs migrations
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := MigrateSQLite(context.Background(), db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewSQLiteStore(db)
}

func createProject(t *testing.T, s *Store) *models.Project {
	t.Helper()
	id := uuid.NewString()
	p := &models.Project{ID: id, Key: "K" + id[:8], Name: "Test", CreatedAt: testBase, UpdatedAt: testBase}
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	return p
}

func insertTicket(t *testing.T, s *Store, projectID string, status models.Status, title string, pos float64, offset time.Duration) *models.Ticket {
	t.Helper()
	ticket := &models.Ticket{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Status:    status,
		Priority:  models.PriorityMedium,
		Source:    models.DefaultSource,
		Position:  pos,
		CreatedAt: testBase.Add(offset),
		UpdatedAt: testBase.Add(offset),
	}
	err := s.WithTx(context.Background(), func(tx Tx) error {
		return tx.Insert(context.Background(), ticket)
	})
	if err != nil {
		t.Fatalf("Failed to insert ticket %q: %v", title, err)
	}
	return ticket
}

func findMany(t *testing.T, s *Store, filter TicketFilter, order ...OrderBy) []*models.Ticket {
	t.Helper()
	var out []*models.Ticket
	err := s.WithTx(context.Background(), func(tx Tx) error {
		var err error
		out, err = tx.FindMany(context.Background(), filter, order...)
		return err
	})
	if err != nil {
		t.Fatalf("FindMany failed: %v", err)
	}
	return out
}

func titles(tickets []*models.Ticket) []string {
	out := make([]string, len(tickets))
	for i, ticket := range tickets {
		out[i] = ticket.Title
	}
	return out
}
