package project

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/testutil"
	cliutil "github.com/thenoetrevino/lanes/internal/testutil/cli"
)

func TestCreateProjectCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		checkFunc func(t *testing.T, output string)
	}{
		{
			name: "quiet prints the new id",
			args: []string{"create", "--name", "My Project", "--key", "MY", "--quiet"},
			checkFunc: func(t *testing.T, output string) {
				id := strings.TrimSpace(output)
				assert.Len(t, id, 36)
			},
		},
		{
			name: "json output",
			args: []string{"create", "--name", "JSON Project", "--key", "json", "--description", "agents", "--json"},
			checkFunc: func(t *testing.T, output string) {
				result := testutil.ParseJSON(t, output)
				assert.Equal(t, true, result["success"])
				data := result["data"].(map[string]any)
				assert.Equal(t, "JSON Project", data["name"])
				assert.Equal(t, "JSON", data["key"])
				assert.Equal(t, "agents", data["description"])
			},
		},
		{
			name: "human-readable output",
			args: []string{"create", "--name", "Human Project", "--key", "HUM", "--description", "Test"},
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "created successfully")
				assert.Contains(t, output, "Human Project")
				assert.Contains(t, output, "[HUM]")
				assert.Contains(t, output, "Description: Test")
			},
		},
		{
			name:    "missing name flag",
			args:    []string{"create", "--json"},
			wantErr: true,
		},
		{
			name:    "missing key flag",
			args:    []string{"create", "--name", "No Key", "--json"},
			wantErr: true,
		},
		{
			name:    "key too long",
			args:    []string{"create", "--name", "Long", "--key", "ELEVENCHARS", "--json"},
			wantErr: true,
			checkFunc: func(t *testing.T, output string) {
				assert.Equal(t, "VALIDATION_ERROR", testutil.ParseJSON(t, output)["error"].(map[string]any)["code"])
			},
		},
		{
			name:    "blank name",
			args:    []string{"create", "--name", "   ", "--key", "BL", "--json"},
			wantErr: true,
			checkFunc: func(t *testing.T, output string) {
				result := testutil.ParseJSON(t, output)
				assert.Equal(t, false, result["success"])
				assert.Equal(t, "VALIDATION_ERROR", result["error"].(map[string]any)["code"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, app := cliutil.SetupCLITest(t)

			output, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), tt.args)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, output)
			}
		})
	}
}

func TestListProjectsCommand(t *testing.T) {
	t.Parallel()
	_, app := cliutil.SetupCLITest(t)

	output, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"list"})
	require.NoError(t, err)
	assert.Contains(t, output, "No projects found")

	for _, name := range []string{"Alpha", "Beta"} {
		_, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"create", "--name", name, "--key", name, "--quiet"})
		require.NoError(t, err)
	}

	output, err = cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"list", "--json"})
	require.NoError(t, err)
	data := testutil.ParseJSON(t, output)["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "BETA", data[0].(map[string]any)["key"], "newest first")

	output, err = cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"list", "--quiet"})
	require.NoError(t, err)
	assert.Len(t, strings.Fields(output), 2)
}

func TestShowProjectCommand(t *testing.T) {
	t.Parallel()
	store, app := cliutil.SetupCLITest(t)
	project := cliutil.CreateTestProject(t, store, "Board")
	cliutil.SeedColumn(t, store, project.ID, models.StatusTodo, []string{"a", "b"}, []float64{1000, 2000})

	output, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"show", "--id", project.ID, "--json"})
	require.NoError(t, err)
	data := testutil.ParseJSON(t, output)["data"].(map[string]any)
	assert.Equal(t, "Board", data["name"])
	assert.Equal(t, float64(2), data["ticket_count"])
}

func TestCreateProjectCommand_DuplicateKey(t *testing.T) {
	t.Parallel()
	_, app := cliutil.SetupCLITest(t)

	_, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"create", "--name", "API", "--key", "API", "--quiet"})
	require.NoError(t, err)

	output, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"create", "--name", "Again", "--key", "api", "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitConflict, cli.ExitCode(err))
	assert.Equal(t, "PROJECT_KEY_EXISTS", testutil.ParseJSON(t, output)["error"].(map[string]any)["code"])
}

func TestUpdateProjectCommand(t *testing.T) {
	t.Parallel()
	store, app := cliutil.SetupCLITest(t)
	project := cliutil.CreateTestProject(t, store, "Board")
	other := cliutil.CreateTestProject(t, store, "Other")

	output, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(),
		[]string{"update", "--id", project.ID, "--name", "Platform", "--key", "plat", "--json"})
	require.NoError(t, err)
	data := testutil.ParseJSON(t, output)["data"].(map[string]any)
	assert.Equal(t, "Platform", data["name"])
	assert.Equal(t, "PLAT", data["key"])

	got, err := app.ProjectService.GetProject(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "PLAT", got.Key)

	output, err = cliutil.ExecuteCLICommand(t, app, ProjectCmd(),
		[]string{"update", "--id", project.ID, "--description", "Shared services"})
	require.NoError(t, err)
	assert.Contains(t, output, "[PLAT] updated")

	_, err = cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"update", "--id", project.ID, "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))

	output, err = cliutil.ExecuteCLICommand(t, app, ProjectCmd(),
		[]string{"update", "--id", other.ID, "--key", "PLAT", "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitConflict, cli.ExitCode(err))
	assert.Equal(t, "PROJECT_KEY_EXISTS", testutil.ParseJSON(t, output)["error"].(map[string]any)["code"])
}

func TestShowProjectCommand_NotFound(t *testing.T) {
	t.Parallel()
	_, app := cliutil.SetupCLITest(t)

	output, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(),
		[]string{"show", "--id", "00000000-0000-4000-8000-000000000000", "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitNotFound, cli.ExitCode(err))
	assert.Equal(t, "PROJECT_NOT_FOUND", testutil.ParseJSON(t, output)["error"].(map[string]any)["code"])
}

func TestDeleteProjectCommand(t *testing.T) {
	t.Parallel()

	t.Run("refuses a project with tickets without force", func(t *testing.T) {
		t.Parallel()
		store, app := cliutil.SetupCLITest(t)
		project := cliutil.CreateTestProject(t, store, "Busy")
		cliutil.SeedColumn(t, store, project.ID, models.StatusTodo, []string{"a"}, []float64{1000})

		_, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"delete", "--id", project.ID, "--json"})
		require.Error(t, err)
		assert.Equal(t, cli.ExitValidation, cli.ExitCode(err))

		_, err = app.ProjectService.GetProject(context.Background(), project.ID)
		require.NoError(t, err)
	})

	t.Run("force removes project and tickets", func(t *testing.T) {
		t.Parallel()
		store, app := cliutil.SetupCLITest(t)
		project := cliutil.CreateTestProject(t, store, "Busy")
		cliutil.SeedColumn(t, store, project.ID, models.StatusTodo, []string{"a"}, []float64{1000})

		output, err := cliutil.ExecuteCLICommand(t, app, ProjectCmd(), []string{"delete", "--id", project.ID, "--force"})
		require.NoError(t, err)
		assert.Contains(t, output, "deleted successfully")

		_, err = app.ProjectService.GetProject(context.Background(), project.ID)
		assert.Error(t, err)
	})

	t.Run("declined confirmation keeps the project", func(t *testing.T) {
		t.Parallel()
		store, app := cliutil.SetupCLITest(t)
		project := cliutil.CreateTestProject(t, store, "Empty")

		cmd := ProjectCmd()
		cmd.SetIn(strings.NewReader("n\n"))
		output, err := cliutil.ExecuteCLICommand(t, app, cmd, []string{"delete", "--id", project.ID})
		require.NoError(t, err)
		assert.Contains(t, output, "Cancelled")

		_, err = app.ProjectService.GetProject(context.Background(), project.ID)
		require.NoError(t, err)
	})
}
