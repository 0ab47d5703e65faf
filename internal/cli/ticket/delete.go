package ticket

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
)

// DeleteCmd returns the ticket delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a ticket",
		Long:  "Delete a ticket by ID (requires confirmation unless --force, --json or --quiet).",
		RunE:  runDelete,
	}

	addIDFlag(cmd)
	cmd.Flags().Bool("force", false, "Skip confirmation")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)
	id, _ := cmd.Flags().GetString("id")
	force, _ := cmd.Flags().GetBool("force")

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	ticket, err := cliInstance.App.TicketService.GetTicket(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	if !force && !formatter.Quiet && !formatter.JSON {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete ticket '%s'? (y/N): ", ticket.Title)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}

	if err := cliInstance.App.TicketService.DeleteTicket(ctx, id); err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		return nil
	}
	return formatter.Success(map[string]any{"ticket_id": id}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Ticket '%s' deleted successfully\n", ticket.Title)
	})
}
