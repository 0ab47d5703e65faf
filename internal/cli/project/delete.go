package project

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
)

// DeleteCmd returns the project delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project",
		Long: `Delete a project by ID.

A project that still holds tickets is only deleted with --force, which also
removes its tickets. Asks for confirmation unless --force, --json or --quiet.`,
		RunE: runDelete,
	}

	// Required flags
	cmd.Flags().String("id", "", "Project ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	// Optional flags
	cmd.Flags().Bool("force", false, "Skip confirmation and delete the project's tickets too")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, _ := cmd.Flags().GetString("id")
	force, _ := cmd.Flags().GetBool("force")

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.FailWith("INITIALIZATION_ERROR", cli.ExitFailure, err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	// Get project details for confirmation
	project, err := cliInstance.App.ProjectService.GetProject(ctx, projectID)
	if err != nil {
		return formatter.Fail(err)
	}

	// Ask for confirmation unless force or an agent-facing mode
	if !force && !formatter.Quiet && !formatter.JSON {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete project '%s' (%s)? (y/N): ", project.Name, project.ID)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}

	err = cliInstance.App.ProjectService.DeleteProject(ctx, projectservice.DeleteProjectRequest{
		ID:    projectID,
		Force: force,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		return nil
	}
	return formatter.Success(map[string]any{"project_id": projectID}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Project %s deleted successfully\n", projectID)
	})
}
