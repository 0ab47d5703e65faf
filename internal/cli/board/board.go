// Package board holds the commands that show a project's columns side by side
//
// e.g., lanes board ..., lanes tui ...
package board

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/cli/styles"
	"github.com/thenoetrevino/lanes/internal/models"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// BoardCmd returns the board command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print a project's columns",
		Long: `Print every column of a project in display order.

Examples:
  lanes board --project=<id>
  lanes board --json
`,
		RunE: runBoard,
	}

	cmd.Flags().String("project", "", "Project ID (defaults to $LANES_PROJECT)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runBoard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, err := cli.GetProjectID(cmd)
	if err != nil {
		return formatter.FailWith("NO_PROJECT", cli.ExitUsage, err,
			"Pass --project or set a project with 'eval $(lanes use project <id>)'")
	}

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.FailWith("INITIALIZATION_ERROR", cli.ExitFailure, err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	board, err := cliInstance.App.TicketService.Board(ctx, projectID)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		for _, st := range models.AllStatuses {
			for _, t := range board[st] {
				fmt.Fprintln(cmd.OutOrStdout(), t.ID)
			}
		}
		return nil
	}

	data := make(map[string][]map[string]any, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		column := make([]map[string]any, len(board[st]))
		for i, t := range board[st] {
			column[i] = cli.TicketJSON(t)
		}
		data[string(st)] = column
	}

	return formatter.Success(map[string]any{"project_id": projectID, "columns": data}, func(w io.Writer) {
		fmt.Fprintln(w, Render(board))
	})
}

// Render lays the columns out horizontally
func Render(board ticketservice.Board) string {
	columns := make([]string, len(models.AllStatuses))
	for i, st := range models.AllStatuses {
		columns[i] = renderColumn(st, board[st])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderColumn(status models.Status, tickets []*models.Ticket) string {
	var b strings.Builder
	if len(tickets) == 0 {
		b.WriteString(styles.SubtitleStyle.Render("empty"))
	}
	for i, t := range tickets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(styles.ValueStyle.Render(t.Title))
		b.WriteString("\n")
		b.WriteString(styles.RenderPriority(t.Priority))
		b.WriteString(" ")
		b.WriteString(styles.RenderPosition(t.Position))
		b.WriteString(" ")
		b.WriteString(styles.SubtitleStyle.Render(cli.ShortID(t.ID)))
	}
	return styles.RenderColumn(fmt.Sprintf("%s (%d)", status.Label(), len(tickets)), b.String())
}
