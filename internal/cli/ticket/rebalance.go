package ticket

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/models"
)

// RebalanceCmd returns the ticket rebalance subcommand
func RebalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Respace the ordering keys of a column",
		Long: `Respace a column to evenly spaced keys, keeping its order. Without
--status every column of the project is rebalanced.

Examples:
  lanes ticket rebalance --project=<id> --status=todo
  lanes ticket rebalance --project=<id>
`,
		RunE: runRebalance,
	}

	addProjectFlag(cmd)
	cmd.Flags().String("status", "", "Column to rebalance (default: all)")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runRebalance(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, err := projectFromFlags(cmd, formatter)
	if err != nil {
		return err
	}
	status, err := cli.OptionalStatus(cmd, "status")
	if err != nil {
		return formatter.FailWith("INVALID_STATUS", cli.ExitValidation, err, "")
	}

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	svc := cliInstance.App.TicketService
	statuses := models.AllStatuses
	if status != nil {
		statuses = []models.Status{*status}
		err = svc.RebalanceColumn(ctx, projectID, *status)
	} else {
		err = svc.RebalanceProject(ctx, projectID)
	}
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		return nil
	}
	return formatter.Success(map[string]any{
		"project_id": projectID,
		"statuses":   statuses,
	}, func(w io.Writer) {
		for _, s := range statuses {
			fmt.Fprintf(w, "✓ Rebalanced %s\n", s.Label())
		}
	})
}
