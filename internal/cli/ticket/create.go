package ticket

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/models"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// CreateCmd returns the ticket create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new ticket",
		Long: `Create a new ticket at the bottom of its column.

Examples:
  # Simple ticket in TODO
  lanes ticket create --project=<id> --title="Fix login bug"

  # Straight into a column with a priority
  lanes ticket create --project=<id> --title="Ship it" --status=in_progress --priority=high

  # Capture the ID for scripting
  TICKET_ID=$(lanes ticket create --title="Write docs" --quiet)

  # Description from stdin
  cat notes.md | lanes ticket create --title="Notes" --description=-
`,
		RunE: runCreate,
	}

	// Required flags
	cmd.Flags().String("title", "", "Ticket title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	// Optional flags
	addProjectFlag(cmd)
	cmd.Flags().String("description", "", "Ticket description (markdown, '-' reads stdin)")
	cmd.Flags().String("status", "todo", "Column: todo, in_progress, done, blocked")
	cmd.Flags().String("priority", "medium", "Priority: low, medium, high, critical")
	cmd.Flags().String("assignee", "", "Assignee ID")
	cmd.Flags().String("source", "", "Where the ticket came from (default MANUAL)")
	cmd.Flags().String("source-url", "", "Link to the source")
	cmd.Flags().Float64("position", 0, "Explicit ordering key instead of the bottom of the column")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, err := projectFromFlags(cmd, formatter)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	rawStatus, _ := cmd.Flags().GetString("status")
	rawPriority, _ := cmd.Flags().GetString("priority")
	assignee, _ := cmd.Flags().GetString("assignee")
	source, _ := cmd.Flags().GetString("source")
	sourceURL, _ := cmd.Flags().GetString("source-url")
	rawDescription, _ := cmd.Flags().GetString("description")

	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return formatter.FailWith("INVALID_STATUS", cli.ExitValidation, err, "")
	}
	priority, err := models.ParsePriority(rawPriority)
	if err != nil {
		return formatter.FailWith("INVALID_PRIORITY", cli.ExitValidation, err, "")
	}
	description, err := cli.ReadDescription(rawDescription)
	if err != nil {
		return formatter.FailWith("READ_ERROR", cli.ExitDataErr, err, "")
	}

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	ticket, err := cliInstance.App.TicketService.CreateTicket(ctx, ticketservice.CreateTicketRequest{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  assignee,
		Source:      source,
		SourceURL:   sourceURL,
		Position:    cli.OptionalFloat(cmd, "position"),
	})
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(ticketResult{ticket}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Ticket '%s' created in %s (ID: %s)\n", ticket.Title, ticket.Status.Label(), ticket.ID)
		fmt.Fprintf(w, "  Priority: %s  Position: %g\n", ticket.Priority, ticket.Position)
	})
}
