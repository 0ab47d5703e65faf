package project

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/cli/styles"
)

// ShowCmd returns the project show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a project and its ticket count",
		RunE:  runShow,
	}

	cmd.Flags().String("id", "", "Project ID (defaults to $LANES_PROJECT)")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	projectID, _ := cmd.Flags().GetString("id")
	if projectID == "" {
		var err error
		if projectID, err = cli.GetProjectID(cmd); err != nil {
			return formatter.FailWith("NO_PROJECT", cli.ExitUsage, err,
				"Pass --id or set a project with 'eval $(lanes use project <id>)'")
		}
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

	project, err := cliInstance.App.ProjectService.GetProject(ctx, projectID)
	if err != nil {
		return formatter.Fail(err)
	}
	count, err := cliInstance.App.ProjectService.TicketCount(ctx, projectID)
	if err != nil {
		return formatter.Fail(err)
	}

	data := cli.ProjectJSON(project)
	data["ticket_count"] = count
	if formatter.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), project.ID)
		return nil
	}

	return formatter.Success(data, func(w io.Writer) {
		var b strings.Builder
		b.WriteString(styles.TitleStyle.Render(project.Name))
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render(project.Key + " · " + project.ID))
		b.WriteString("\n\n")
		b.WriteString(styles.LabelStyle.Render("Tickets: "))
		b.WriteString(styles.ValueStyle.Render(fmt.Sprintf("%d", count)))
		b.WriteString("\n")
		b.WriteString(styles.LabelStyle.Render("Created: "))
		b.WriteString(styles.ValueStyle.Render(project.CreatedAt.Format("2006-01-02 15:04")))
		if project.Description != "" {
			b.WriteString("\n")
			b.WriteString(styles.SectionStyle.Render("Description"))
			b.WriteString("\n")
			b.WriteString(project.Description)
		}
		fmt.Fprintln(w, styles.RenderCard(b.String()))
	})
}
