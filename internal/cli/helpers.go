package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/lanes/internal/models"
)

// ReadDescription resolves "-" to the contents of stdin
func ReadDescription(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read description from stdin: %w", err)
	}
	return string(data), nil
}

// OptionalStatus parses a status flag, nil when the flag was not given
func OptionalStatus(cmd *cobra.Command, flag string) (*models.Status, error) {
	if !cmd.Flags().Changed(flag) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(flag)
	status, err := models.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// OptionalPriority parses a priority flag, nil when the flag was not given
func OptionalPriority(cmd *cobra.Command, flag string) (*models.Priority, error) {
	if !cmd.Flags().Changed(flag) {
		return nil, nil
	}
	raw, _ := cmd.Flags().GetString(flag)
	priority, err := models.ParsePriority(raw)
	if err != nil {
		return nil, err
	}
	return &priority, nil
}

// OptionalString returns a pointer to the flag value when the flag was given
func OptionalString(cmd *cobra.Command, flag string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	v, _ := cmd.Flags().GetString(flag)
	return &v
}

// OptionalFloat returns a pointer to the flag value when the flag was given
func OptionalFloat(cmd *cobra.Command, flag string) *float64 {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(flag)
	return &v
}

// ShortID trims a UUID for tables
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// TicketJSON is the stable machine readable form of a ticket
func TicketJSON(t *models.Ticket) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"project_id":  t.ProjectID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"assignee_id": t.AssigneeID,
		"source":      t.Source,
		"source_url":  t.SourceURL,
		"position":    t.Position,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}

// ProjectJSON is the stable machine readable form of a project
func ProjectJSON(p *models.Project) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"key":         p.Key,
		"name":        p.Name,
		"description": p.Description,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
