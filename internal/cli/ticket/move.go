package ticket

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/models"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// MoveCmd returns the ticket move subcommand
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a ticket to a slot in a column",
		Long: `Move a ticket to a 0-based slot in a column. The destination column is
renumbered so its keys stay evenly spaced; an index past the end appends.

Examples:
  # Top of IN_PROGRESS
  lanes ticket move --id=<id> --status=in_progress --index=0

  # Third slot of the current column
  lanes ticket move --id=<id> --status=todo --index=2
`,
		RunE: runMove,
	}

	addIDFlag(cmd)
	cmd.Flags().String("status", "", "Destination column (required)")
	if err := cmd.MarkFlagRequired("status"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}
	cmd.Flags().Int("index", 0, "0-based slot in the destination column")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runMove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)
	id, _ := cmd.Flags().GetString("id")
	rawStatus, _ := cmd.Flags().GetString("status")
	index, _ := cmd.Flags().GetInt("index")

	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return formatter.FailWith("INVALID_STATUS", cli.ExitValidation, err, "")
	}

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	ticket, err := cliInstance.App.TicketService.MoveTicket(ctx, id, ticketservice.MoveRequest{
		Status: status,
		Index:  index,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(ticketResult{ticket}, printPlacement("moved", ticket))
}
