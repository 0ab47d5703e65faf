package ticket

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/cli/styles"
	"github.com/thenoetrevino/lanes/internal/database"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// ListCmd returns the ticket list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		Long: `List tickets of a project with filters, sorting and paging.

Examples:
  lanes ticket list --project=<id>
  lanes ticket list --status=todo --sort=position --order=asc
  lanes ticket list --search=login --priority=high --json
  lanes ticket list --page=2 --limit=50
`,
		RunE: runList,
	}

	addProjectFlag(cmd)
	cmd.Flags().String("status", "", "Filter by status")
	cmd.Flags().String("priority", "", "Filter by priority")
	cmd.Flags().String("assignee", "", "Filter by assignee ID")
	cmd.Flags().String("search", "", "Match title or description")
	cmd.Flags().String("sort", "created_at", "Sort by: position, created_at, updated_at, priority, status")
	cmd.Flags().String("order", "desc", "Sort order: asc, desc")
	cmd.Flags().Int("page", 1, "Page number, starting at 1")
	cmd.Flags().Int("limit", ticketservice.DefaultPageSize, fmt.Sprintf("Page size (max %d)", ticketservice.MaxPageSize))

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
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
	priority, err := cli.OptionalPriority(cmd, "priority")
	if err != nil {
		return formatter.FailWith("INVALID_PRIORITY", cli.ExitValidation, err, "")
	}
	rawSort, _ := cmd.Flags().GetString("sort")
	sortBy, err := database.ParseSortField(rawSort)
	if err != nil {
		return formatter.FailWith("INVALID_SORT", cli.ExitValidation, err, "")
	}
	search, _ := cmd.Flags().GetString("search")
	order, _ := cmd.Flags().GetString("order")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	result, err := cliInstance.App.TicketService.ListTickets(ctx, ticketservice.ListTicketsRequest{
		ProjectID:  projectID,
		Status:     status,
		Priority:   priority,
		AssigneeID: cli.OptionalString(cmd, "assignee"),
		Search:     search,
		SortBy:     sortBy,
		Order:      ticketservice.SortOrder(order),
		Page:       page,
		PageSize:   limit,
	})
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		for _, t := range result.Items {
			fmt.Fprintln(cmd.OutOrStdout(), t.ID)
		}
		return nil
	}

	items := make([]map[string]any, len(result.Items))
	for i, t := range result.Items {
		items[i] = cli.TicketJSON(t)
	}
	data := map[string]any{
		"tickets":   items,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
		"has_more":  result.HasMore(),
	}

	return formatter.Success(data, func(w io.Writer) {
		if len(result.Items) == 0 {
			fmt.Fprintln(w, "No tickets found")
			return
		}
		fmt.Fprintf(w, "Showing %d of %d tickets (page %d):\n\n", len(result.Items), result.Total, result.Page)
		for _, t := range result.Items {
			fmt.Fprintf(w, "  %s  %-12s %-8s %s  %s\n",
				cli.ShortID(t.ID), t.Status, styles.RenderPriority(t.Priority),
				styles.RenderPosition(t.Position), t.Title)
		}
		if result.HasMore() {
			fmt.Fprintf(w, "\nMore results: --page=%d\n", result.Page+1)
		}
	})
}
