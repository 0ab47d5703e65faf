package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/lanes/internal/daemon"
	"github.com/thenoetrevino/lanes/internal/events"
)

// DaemonHarness is a live event daemon on a socket private to one test
type DaemonHarness struct {
	Server     *daemon.Server
	SocketPath string
}

// StartDaemon runs a daemon until the test ends and waits for its socket
func StartDaemon(t *testing.T) *DaemonHarness {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "lanes.sock")
	server, err := daemon.NewServer(socketPath)
	require.NoError(t, err, "create daemon")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(ctx); err != nil {
			t.Logf("daemon stopped: %v", err)
		}
	}()

	t.Cleanup(func() {
		cancel()
		if err := server.Shutdown(); err != nil {
			t.Logf("daemon shutdown: %v", err)
		}
		<-done
	})

	require.Eventually(t, func() bool {
		_, err := os.Stat(socketPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "daemon socket never appeared")

	return &DaemonHarness{Server: server, SocketPath: socketPath}
}

// Client opens a connected event client that is closed with the test
func (h *DaemonHarness) Client(t *testing.T) *events.Client {
	t.Helper()

	client, err := events.NewClient(h.SocketPath)
	require.NoError(t, err, "create client")
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("client close: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx), "connect client")

	return client
}
