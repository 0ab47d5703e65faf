package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// ParseJSON decodes the envelope a command printed with --json
func ParseJSON(t *testing.T, output string) map[string]any {
	t.Helper()

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output: %s", output)
	return result
}
