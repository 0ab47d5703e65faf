// Package cmd assembles the lanes command tree
package cmd

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/cli/board"
	"github.com/thenoetrevino/lanes/internal/cli/project"
	"github.com/thenoetrevino/lanes/internal/cli/styles"
	"github.com/thenoetrevino/lanes/internal/cli/ticket"
	"github.com/thenoetrevino/lanes/internal/cli/use"
	"github.com/thenoetrevino/lanes/internal/config"
	"github.com/thenoetrevino/lanes/internal/logging"
	"github.com/thenoetrevino/lanes/internal/telemetry"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

var logCloser io.Closer

// NewRootCmd builds the lanes command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lanes",
		Short: "Lanes - ordered ticket lanes for projects",
		Long: `Lanes keeps a project's tickets in ordered status columns.

Tickets can be placed anywhere in a column, moved between columns and
reordered without renumbering their neighbours. Every command supports
--json for agents and --quiet for shell capture.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "tickets", Title: "Working With Tickets:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "context", Title: "Context:"},
	)

	for group, cmds := range map[string][]*cobra.Command{
		"tickets": {ticket.TicketCmd(), project.ProjectCmd()},
		"views":   {board.BoardCmd(), board.TUICmd()},
		"context": {use.UseCmd()},
	} {
		for _, c := range cmds {
			c.GroupID = group
			rootCmd.AddCommand(c)
		}
	}

	return rootCmd
}

// Execute runs the command tree against ctx. Telemetry is flushed and the
// log file closed whether or not the command failed.
func Execute(ctx context.Context) error {
	defer teardown(ctx)
	return NewRootCmd().ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	closer, err := logging.Init()
	if err != nil {
		// Commands still run without a log file
		slog.Warn("failed to initialize logging", "error", err)
	} else {
		logCloser = closer
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	styles.Init(cfg.ColorScheme)

	return telemetry.Init(cmd.Context(), telemetry.Options{
		Enabled: cfg.Telemetry.Enabled,
		Stdout:  cfg.Telemetry.Stdout,
	}, "lanes", Version)
}

func teardown(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 2*time.Second)
	defer cancel()
	telemetry.Shutdown(ctx)

	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}
