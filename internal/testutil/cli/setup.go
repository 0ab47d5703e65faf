package cli

import (
	"testing"

	"github.com/thenoetrevino/lanes/internal/app"
	"github.com/thenoetrevino/lanes/internal/config"
	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/testutil"
)

// SetupCLITest creates an in-memory store and returns it with an App built on it.
// This lives apart from testutil so service tests can import testutil without
// pulling in the app and cli packages.
func SetupCLITest(t *testing.T) (*database.Store, *app.App) {
	t.Helper()
	store := testutil.SetupTestStore(t)

	// EventPublisher is nil - event publishing is tested elsewhere
	appInstance := app.New(store, config.Default())

	return store, appInstance
}

// CreateTestProject wraps testutil.CreateTestProject for CLI tests
func CreateTestProject(t *testing.T, store *database.Store, name string) *models.Project {
	t.Helper()
	return testutil.CreateTestProject(t, store, name)
}

// SeedColumn wraps testutil.SeedColumn for CLI tests
func SeedColumn(t *testing.T, store *database.Store, projectID string, status models.Status, titles []string, positions []float64) []*models.Ticket {
	t.Helper()
	return testutil.SeedColumn(t, store, projectID, status, titles, positions)
}
