// Package ticket holds all cli commands related to tickets
//
// e.g., lanes ticket ...
package ticket

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/cli/styles"
	"github.com/thenoetrevino/lanes/internal/models"
)

// TicketCmd returns the ticket parent command
func TicketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Manage tickets",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(ReorderCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(RebalanceCmd())

	return cmd
}

// ticketResult serializes a ticket in the stable JSON shape and still answers
// GetID for quiet mode
type ticketResult struct {
	*models.Ticket
}

func (t ticketResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(cli.TicketJSON(t.Ticket))
}

func addIDFlag(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Ticket ID (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}
}

func addProjectFlag(cmd *cobra.Command) {
	cmd.Flags().String("project", "", "Project ID (defaults to $LANES_PROJECT)")
}

// projectFromFlags resolves the project or reports a usage error
func projectFromFlags(cmd *cobra.Command, formatter *cli.OutputFormatter) (string, error) {
	projectID, err := cli.GetProjectID(cmd)
	if err != nil {
		return "", formatter.FailWith("NO_PROJECT", cli.ExitUsage, err,
			"Pass --project or set a project with 'eval $(lanes use project <id>)'")
	}
	return projectID, nil
}

// openCLI wraps GetCLIFromContext with the shared initialization failure
func openCLI(cmd *cobra.Command, formatter *cli.OutputFormatter) (*cli.CLI, func(), error) {
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return nil, nil, formatter.FailWith("INITIALIZATION_ERROR", cli.ExitFailure, err, "")
	}
	return cliInstance, func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}, nil
}

// printPlacement is the human output shared by the ordering commands
func printPlacement(verb string, t *models.Ticket) func(w io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintf(w, "✓ Ticket '%s' %s to %s at position %s\n",
			t.Title, verb, t.Status.Label(), styles.RenderPosition(t.Position))
	}
}
