package project

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/models"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
)

// CreateCmd returns the project create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long: `Create a new project with specified attributes.

Examples:
  # Simple project (human-readable output)
  lanes project create --name="Backend API" --key=API

  # JSON output for agents
  lanes project create --name="Backend API" --key=API --json

  # Quiet mode for bash capture
  PROJECT_ID=$(lanes project create --name="Backend API" --key=API --quiet)

  # With description
  lanes project create \
    --name="Backend API" \
    --key=API \
    --description="REST API for mobile app"
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().String("name", "", "Project name (required)")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}
	cmd.Flags().String("key", "", "Unique 2-10 character project key, stored uppercase (required)")
	if err := cmd.MarkFlagRequired("key"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	// Optional flags
	cmd.Flags().String("description", "", "Project description")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	name, _ := cmd.Flags().GetString("name")
	key, _ := cmd.Flags().GetString("key")
	description, _ := cmd.Flags().GetString("description")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.FailWith("INITIALIZATION_ERROR", cli.ExitFailure, err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	project, err := cliInstance.App.ProjectService.CreateProject(ctx, projectservice.CreateProjectRequest{
		Name:        name,
		Key:         key,
		Description: description,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(projectResult{project}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Project '%s' [%s] created successfully (ID: %s)\n", project.Name, project.Key, project.ID)
		if project.Description != "" {
			fmt.Fprintf(w, "  Description: %s\n", project.Description)
		}
	})
}

// projectResult serializes a project in the stable JSON shape and still
// answers GetID for quiet mode
type projectResult struct {
	*models.Project
}

func (p projectResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(cli.ProjectJSON(p.Project))
}
