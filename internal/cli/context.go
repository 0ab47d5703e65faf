package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/app"
	"github.com/thenoetrevino/lanes/internal/config"
)

// ProjectEnvVar holds the shell's current project, set by `lanes use project`
const ProjectEnvVar = "LANES_PROJECT"

type appKey struct{}

// WithApp stores an already built App in ctx. Commands run with such a
// context use it instead of opening the configured database.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// CLI represents the CLI application context
type CLI struct {
	App   *app.App // Application container with services
	owned bool
}

// GetCLIFromContext returns the App injected with WithApp or, when there is
// none, opens one from the user's configuration
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a, ok := ctx.Value(appKey{}).(*app.App); ok && a != nil {
		return &CLI{App: a}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &CLI{App: a, owned: true}, nil
}

// Close cleans up CLI resources. An injected App is left open for its owner.
func (c *CLI) Close() error {
	if !c.owned {
		return nil
	}
	return c.App.Close()
}

// GetProjectID reads --project, falling back to LANES_PROJECT
func GetProjectID(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Lookup("project") != nil {
		if id, _ := cmd.Flags().GetString("project"); strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id), nil
		}
	}
	if id := strings.TrimSpace(os.Getenv(ProjectEnvVar)); id != "" {
		return id, nil
	}
	return "", errors.New("no project specified (use --project or eval $(lanes use project <id>))")
}
