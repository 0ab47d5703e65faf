package ticket

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// ReorderCmd returns the ticket reorder subcommand
func ReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Place a ticket at an ordering key",
		Long: `Place a ticket at an absolute ordering key, optionally in another column.

Without --position the ticket goes to the top of the column. A key that is
already taken is nudged into the gap next to it. When the gap is exhausted
the command fails with exit code 6 unless --auto-rebalance is given, which
respaces the column and retries once.

Examples:
  # Send to the top of its column
  lanes ticket reorder --id=<id>

  # Between keys 1000 and 2000
  lanes ticket reorder --id=<id> --position=1500

  # Into another column
  lanes ticket reorder --id=<id> --status=done --position=1000
`,
		RunE: runReorder,
	}

	addIDFlag(cmd)
	cmd.Flags().String("status", "", "Target column (defaults to the current one)")
	cmd.Flags().Float64("position", 0, "Target ordering key (defaults to the top)")
	cmd.Flags().Bool("auto-rebalance", false, "Rebalance and retry once if the gap is exhausted")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runReorder(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)
	id, _ := cmd.Flags().GetString("id")

	status, err := cli.OptionalStatus(cmd, "status")
	if err != nil {
		return formatter.FailWith("INVALID_STATUS", cli.ExitValidation, err, "")
	}

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	req := ticketservice.ReorderRequest{
		Status:   status,
		Position: cli.OptionalFloat(cmd, "position"),
	}
	// Only an explicit flag overrides the configured default
	if cmd.Flags().Changed("auto-rebalance") {
		autoRebalance, _ := cmd.Flags().GetBool("auto-rebalance")
		req.AutoRebalance = &autoRebalance
	}

	ticket, err := cliInstance.App.TicketService.ReorderTicket(ctx, id, req)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(ticketResult{ticket}, printPlacement("reordered", ticket))
}
