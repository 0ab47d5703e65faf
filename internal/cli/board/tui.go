package board

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/tui"
)

// TUICmd returns the interactive board command
func TUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive board",
		Long: `Open a project's board in the terminal. Tickets are reordered and moved
with the keyboard (press ? for the bindings). When the daemon is running the
board reloads as soon as another process changes the project.`,
		RunE: runTUI,
	}

	cmd.Flags().String("project", "", "Project ID (defaults to $LANES_PROJECT)")

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	projectID, err := cli.GetProjectID(cmd)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitUsage, Err: err}
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	// Fail before taking over the terminal
	if _, err := cliInstance.App.ProjectService.GetProject(ctx, projectID); err != nil {
		return &cli.ExitError{Code: cli.Classify(err).Exit, Err: err}
	}

	return tui.Run(ctx, cliInstance.App, projectID)
}
