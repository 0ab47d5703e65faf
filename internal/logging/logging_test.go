package logging

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDir_WritesToLogFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		log.SetOutput(os.Stderr)
	})

	dir := filepath.Join(t.TempDir(), "logs")
	closer, err := InitDir(dir)
	require.NoError(t, err)

	slog.Info("ticket moved", "ticket_id", "abc")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "lanes.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ticket moved")
	assert.Contains(t, string(data), "ticket_id=abc")
}
