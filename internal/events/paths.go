package events

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSocketPath returns ~/.lanes/lanes.sock
func DefaultSocketPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".lanes", "lanes.sock"), nil
}
