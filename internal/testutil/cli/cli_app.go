package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/app"
	"github.com/thenoetrevino/lanes/internal/cli"
)

// ExecuteCLICommand executes a CLI command with a test app instance.
// The app is injected into the command context so GetCLIFromContext uses the
// test database instead of the user's configuration.
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	return ExecuteCLICommandWithContext(t, context.Background(), testApp, cmd, args)
}

// ExecuteCLICommandWithContext executes a CLI command with a specific context
// and test app. It returns what the command wrote to stdout.
func ExecuteCLICommandWithContext(t *testing.T, ctx context.Context, testApp *app.App, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()
	stdout, _, err := ExecuteCLICommandFull(t, ctx, testApp, cmd, args)
	return stdout, err
}

// ExecuteCLICommandFull is ExecuteCLICommandWithContext returning stderr as well
func ExecuteCLICommandFull(t *testing.T, ctx context.Context, testApp *app.App, cmd *cobra.Command, args []string) (string, string, error) {
	t.Helper()

	if testApp == nil {
		t.Fatal("testApp cannot be nil - SetupCLITest must be called first")
	}

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(cli.WithApp(ctx, testApp))
	return stdout.String(), stderr.String(), err
}
