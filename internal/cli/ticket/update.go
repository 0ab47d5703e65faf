package ticket

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// UpdateCmd returns the ticket update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a ticket's details",
		Long: `Update the descriptive fields of a ticket. Only the flags given change.
Use 'reorder' or 'move' to change a ticket's column or position.

Examples:
  lanes ticket update --id=<id> --title="New title"
  lanes ticket update --id=<id> --priority=critical --assignee=alice
  lanes ticket update --id=<id> --description=- < notes.md
`,
		RunE: runUpdate,
	}

	addIDFlag(cmd)
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description ('-' reads stdin)")
	cmd.Flags().String("priority", "", "New priority")
	cmd.Flags().String("assignee", "", "New assignee ID (empty clears)")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)
	id, _ := cmd.Flags().GetString("id")

	if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("description") &&
		!cmd.Flags().Changed("priority") && !cmd.Flags().Changed("assignee") {
		return formatter.FailWith("NO_UPDATES", cli.ExitUsage,
			fmt.Errorf("nothing to update"), "Pass at least one of --title, --description, --priority, --assignee")
	}

	priority, err := cli.OptionalPriority(cmd, "priority")
	if err != nil {
		return formatter.FailWith("INVALID_PRIORITY", cli.ExitValidation, err, "")
	}
	description := cli.OptionalString(cmd, "description")
	if description != nil {
		text, err := cli.ReadDescription(*description)
		if err != nil {
			return formatter.FailWith("READ_ERROR", cli.ExitDataErr, err, "")
		}
		description = &text
	}

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	ticket, err := cliInstance.App.TicketService.UpdateTicket(ctx, ticketservice.UpdateTicketRequest{
		ID:          id,
		Title:       cli.OptionalString(cmd, "title"),
		Description: description,
		Priority:    priority,
		AssigneeID:  cli.OptionalString(cmd, "assignee"),
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(ticketResult{ticket}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Ticket '%s' updated\n", ticket.Title)
	})
}
