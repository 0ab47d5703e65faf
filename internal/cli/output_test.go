package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// ============================================================================
// Mock Types for Testing
// ============================================================================

type mockDataWithoutID struct {
	Name  string
	Value int
}

func newFormatter(jsonMode, quiet bool) (*OutputFormatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &OutputFormatter{JSON: jsonMode, Quiet: quiet, Out: &out, ErrOut: &errOut}, &out, &errOut
}

func decode(t *testing.T, b *bytes.Buffer) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &result), "output: %s", b.String())
	return result
}

// ============================================================================
// Success
// ============================================================================

func TestOutputFormatter_Success_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data any
		want any
	}{
		{"map data", map[string]any{"test": "value"}, map[string]any{"test": "value"}},
		{"string data", "simple string", "simple string"},
		{"integer data", 42, float64(42)},
		{"nil data", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, out, _ := newFormatter(true, false)
			require.NoError(t, f.Success(tt.data, func(w io.Writer) {
				t.Error("human output must not run in JSON mode")
			}))

			result := decode(t, out)
			assert.Equal(t, true, result["success"])
			assert.Equal(t, tt.want, result["data"])
		})
	}
}

func TestOutputFormatter_Success_QuietPrintsID(t *testing.T) {
	t.Parallel()

	f, out, _ := newFormatter(false, true)
	ticket := &models.Ticket{ID: "0b7e1a62-1111-4c1e-9d7e-000000000001", Title: "Write docs"}

	require.NoError(t, f.Success(ticket, func(w io.Writer) {
		fmt.Fprintln(w, "should not print")
	}))
	assert.Equal(t, ticket.ID+"\n", out.String())
}

func TestOutputFormatter_Success_QuietWithoutIDPrintsNothing(t *testing.T) {
	t.Parallel()

	f, out, _ := newFormatter(false, true)
	require.NoError(t, f.Success(mockDataWithoutID{Name: "Test", Value: 42}, nil))
	assert.Empty(t, out.String())
}

func TestOutputFormatter_Success_HumanReadable(t *testing.T) {
	t.Parallel()

	t.Run("uses human callback", func(t *testing.T) {
		t.Parallel()
		f, out, _ := newFormatter(false, false)
		require.NoError(t, f.Success("ignored", func(w io.Writer) {
			fmt.Fprintln(w, "✓ done")
		}))
		assert.Equal(t, "✓ done\n", out.String())
	})

	t.Run("falls back to pretty print", func(t *testing.T) {
		t.Parallel()
		f, out, _ := newFormatter(false, false)
		require.NoError(t, f.Success(mockDataWithoutID{Name: "Test", Value: 42}, nil))
		assert.Contains(t, out.String(), "Name:Test")
	})
}

// ============================================================================
// Errors
// ============================================================================

func TestOutputFormatter_Error_JSON(t *testing.T) {
	t.Parallel()

	f, out, errOut := newFormatter(true, false)
	require.NoError(t, f.ErrorWithSuggestion("TEST_ERROR", "error with \"quotes\"", "try again"))

	result := decode(t, out)
	assert.Equal(t, false, result["success"])
	errData := result["error"].(map[string]any)
	assert.Equal(t, "TEST_ERROR", errData["code"])
	assert.Equal(t, "error with \"quotes\"", errData["message"])
	assert.Equal(t, "try again", errData["suggestion"])
	assert.Empty(t, errOut.String())
}

func TestOutputFormatter_Error_JSONOmitsEmptySuggestion(t *testing.T) {
	t.Parallel()

	f, out, _ := newFormatter(true, false)
	require.NoError(t, f.Error("TEST_ERROR", "boom"))

	errData := decode(t, out)["error"].(map[string]any)
	_, ok := errData["suggestion"]
	assert.False(t, ok)
}

func TestOutputFormatter_Error_HumanGoesToStderr(t *testing.T) {
	t.Parallel()

	f, out, errOut := newFormatter(false, false)
	require.NoError(t, f.ErrorWithSuggestion("TEST_ERROR", "boom", "try again"))

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error: boom")
	assert.Contains(t, errOut.String(), "Suggestion: try again")
}

func TestOutputFormatter_Fail(t *testing.T) {
	t.Parallel()

	f, out, _ := newFormatter(true, false)
	cause := fmt.Errorf("reorder: %w", ticketservice.ErrPositionGapExhausted)

	err := f.Fail(cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, ticketservice.ErrPositionGapExhausted)
	assert.Equal(t, ExitConflict, ExitCode(err))

	errData := decode(t, out)["error"].(map[string]any)
	assert.Equal(t, "POSITION_GAP_EXHAUSTED", errData["code"])
	assert.True(t, strings.Contains(errData["suggestion"].(string), "rebalance"))
}

// ============================================================================
// Classification and exit codes
// ============================================================================

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"ticket not found", ticketservice.ErrTicketNotFound, "TICKET_NOT_FOUND", ExitNotFound},
		{"ticket project not found", ticketservice.ErrProjectNotFound, "PROJECT_NOT_FOUND", ExitNotFound},
		{"project not found", projectservice.ErrProjectNotFound, "PROJECT_NOT_FOUND", ExitNotFound},
		{"wrapped validation", fmt.Errorf("create: %w", ticketservice.ErrValidation), "VALIDATION_ERROR", ExitValidation},
		{"empty project name", projectservice.ErrEmptyName, "VALIDATION_ERROR", ExitValidation},
		{"project has tickets", projectservice.ErrProjectHasTickets, "PROJECT_NOT_EMPTY", ExitValidation},
		{"gap exhausted", ticketservice.ErrPositionGapExhausted, "POSITION_GAP_EXHAUSTED", ExitConflict},
		{"tx conflict", database.ErrTxConflict, "TRANSACTION_CONFLICT", ExitTransient},
		{"anything else", errors.New("disk on fire"), "INTERNAL_ERROR", ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Classify(tt.err)
			assert.Equal(t, tt.code, c.Code)
			assert.Equal(t, tt.exit, c.Exit)
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(&ExitError{Code: ExitUsage, Err: errors.New("bad flag")}))
	assert.Equal(t, ExitNotFound, ExitCode(fmt.Errorf("get: %w", ticketservice.ErrTicketNotFound)))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("unknown")))
}
