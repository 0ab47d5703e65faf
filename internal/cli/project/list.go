package project

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli"
	"github.com/thenoetrevino/lanes/internal/cli/styles"
)

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		Long:  "List all projects, oldest first.",
		RunE:  runList,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := cli.NewFormatter(cmd)

	cliInstance, err := cli.GetCLIFromContext(ctx)
	if err != nil {
		return formatter.FailWith("INITIALIZATION_ERROR", cli.ExitFailure, err, "")
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	projects, err := cliInstance.App.ProjectService.ListProjects(ctx)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Quiet {
		for _, p := range projects {
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
		}
		return nil
	}

	data := make([]map[string]any, len(projects))
	for i, p := range projects {
		data[i] = cli.ProjectJSON(p)
	}

	return formatter.Success(data, func(w io.Writer) {
		if len(projects) == 0 {
			fmt.Fprintln(w, "No projects found")
			return
		}
		fmt.Fprintf(w, "Found %d projects:\n\n", len(projects))
		for _, p := range projects {
			fmt.Fprintf(w, "  %-10s %s  %s\n", p.Key, styles.PositionStyle.Render(p.ID), styles.TitleStyle.Render(p.Name))
			if p.Description != "" {
				fmt.Fprintf(w, "      %s\n", p.Description)
			}
		}
	})
}
