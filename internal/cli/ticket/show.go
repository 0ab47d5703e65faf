package ticket

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/cli/styles"
	"github.com/thenoetrevino/lanes/internal/models"
)

// ShowCmd returns the ticket show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a ticket",
		Long:  "Show a ticket with its markdown description rendered for the terminal.",
		RunE:  runShow,
	}

	addIDFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)
	id, _ := cmd.Flags().GetString("id")

	cliInstance, done, err := openCLI(cmd, formatter)
	if err != nil {
		return err
	}
	defer done()

	ticket, err := cliInstance.App.TicketService.GetTicket(ctx, id)
	if err != nil {
		return formatter.Fail(err)
	}

	return formatter.Success(ticketResult{ticket}, func(w io.Writer) {
		fmt.Fprintln(w, styles.RenderCard(renderTicket(ticket)))
	})
}

func renderTicket(t *models.Ticket) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(t.Title))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(t.ID))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(styles.LabelStyle.Render(label + ": "))
		b.WriteString(styles.ValueStyle.Render(value))
		b.WriteString("\n")
	}
	field("Status", t.Status.Label())
	b.WriteString(styles.LabelStyle.Render("Priority: "))
	b.WriteString(styles.RenderPriority(t.Priority))
	b.WriteString("\n")
	field("Position", fmt.Sprintf("%g", t.Position))
	if t.AssigneeID != "" {
		field("Assignee", t.AssigneeID)
	}
	field("Source", t.Source)
	if t.SourceURL != "" {
		field("Source URL", t.SourceURL)
	}
	field("Updated", t.UpdatedAt.Format("2006-01-02 15:04"))

	b.WriteString(styles.SectionStyle.Render("Description"))
	b.WriteString("\n")
	b.WriteString(styles.RenderMarkdown(t.Description, styles.CardWidth-6))
	return b.String()
}
