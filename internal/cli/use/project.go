package use

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
)

// ProjectCmd returns the use project subcommand
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project [project-id]",
		Short: "Set project context for current shell session",
		Long: `Set the current project context using environment variables.
This command outputs shell commands that should be evaluated:

  eval $(lanes use project <id>)          # Use a project
  eval $(lanes use project --clear)       # Clear project context
  lanes use project --show                # Show current project

The LANES_PROJECT environment variable will be set in your current shell
session only. The --project flag on other commands takes precedence over
this environment variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUseProject,
	}

	cmd.Flags().Bool("clear", false, "Clear the current project context")
	cmd.Flags().Bool("show", false, "Show the current project context")
	cmd.Flags().Bool("dry-run", false, "Show what would be exported without outputting shell commands")

	return cmd
}

func runUseProject(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	clearFlag, _ := cmd.Flags().GetBool("clear")
	showFlag, _ := cmd.Flags().GetBool("show")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if showFlag {
		return showCurrentProject(cmd)
	}

	if clearFlag {
		if dryRun {
			fmt.Fprintf(errOut, "Would clear %s\n", cli.ProjectEnvVar)
			return nil
		}
		fmt.Fprintf(out, "unset %s\n", cli.ProjectEnvVar)
		fmt.Fprintf(errOut, "Cleared project context\n")
		return nil
	}

	if len(args) == 0 {
		return &cli.ExitError{
			Code: cli.ExitUsage,
			Err:  fmt.Errorf("project ID required\nUsage: eval $(lanes use project <project-id>)"),
		}
	}
	projectID := args[0]

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return fmt.Errorf("initialization error: %w", err)
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	project, err := cliInstance.App.ProjectService.GetProject(ctx, projectID)
	if err != nil {
		fmt.Fprintf(errOut, "Error: project %s not found\n", projectID)
		fmt.Fprintf(errOut, "Suggestion: Use 'lanes project list' to see available projects\n")
		return &cli.ExitError{Code: cli.Classify(err).Exit, Err: err}
	}

	// Shell export goes to stdout for eval, chatter to stderr
	if dryRun {
		fmt.Fprintf(errOut, "Would set %s=%s (%s)\n", cli.ProjectEnvVar, project.ID, project.Name)
		return nil
	}

	fmt.Fprintf(out, "export %s=%s\n", cli.ProjectEnvVar, project.ID)
	fmt.Fprintf(errOut, "Now using project %s: %s\n", project.ID, project.Name)

	return nil
}

func showCurrentProject(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	currentProject := os.Getenv(cli.ProjectEnvVar)
	if currentProject == "" {
		fmt.Fprintln(out, "No project context set")
		fmt.Fprintln(out, "Use 'eval $(lanes use project <project-id>)' to set one")
		return nil
	}

	ctx := cmd.Context()
	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return fmt.Errorf("initialization error: %w", err)
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	project, err := cliInstance.App.ProjectService.GetProject(ctx, currentProject)
	if err != nil {
		fmt.Fprintf(out, "Current project: %s (project not found)\n", currentProject)
		return nil
	}

	fmt.Fprintf(out, "Current project: %s (%s)\n", project.ID, project.Name)
	return nil
}
