package project

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
)

// UpdateCmd returns the project update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a project's name, key or description",
		Long: `Update a project. Only the flags given change.

Examples:
  lanes project update --id=<id> --name="Platform API"
  lanes project update --key=PLAT          # project from $LANES_PROJECT
  lanes project update --id=<id> --description="" --json
`,
		RunE: runUpdate,
	}

	cmd.Flags().String("id", "", "Project ID (defaults to $LANES_PROJECT)")
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("key", "", "New unique key")
	cmd.Flags().String("description", "", "New description")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, _ := cmd.Flags().GetString("id")
	if projectID == "" {
		var err error
		if projectID, err = cli.GetProjectID(cmd); err != nil {
			return formatter.FailWith("NO_PROJECT", cli.ExitUsage, err,
				"Pass --id or set a project with 'eval $(lanes use project <id>)'")
		}
	}

	req := projectservice.UpdateProjectRequest{
		ID:          projectID,
		Name:        cli.OptionalString(cmd, "name"),
		Key:         cli.OptionalString(cmd, "key"),
		Description: cli.OptionalString(cmd, "description"),
	}
	if req.Name == nil && req.Key == nil && req.Description == nil {
		return formatter.FailWith("NO_UPDATES", cli.ExitUsage,
			errors.New("nothing to update"), "Pass at least one of --name, --key, --description")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.FailWith("INITIALIZATION_ERROR", cli.ExitFailure, err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	project, err := cliInstance.App.ProjectService.UpdateProject(ctx, req)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(projectResult{project}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Project '%s' [%s] updated\n", project.Name, project.Key)
	})
}
