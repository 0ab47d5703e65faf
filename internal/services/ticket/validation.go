package ticket

import (
	"strings"

	"github.com/google/uuid"

	"github.com/thenoetrevino/lanes/internal/models"
	"github.com/thenoetrevino/lanes/internal/position"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 10000
	maxAssigneeLength    = 64
	maxSourceURLLength   = 2048
)

func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(field, "cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return invalid(field, "%q is not a valid UUID", id)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return invalid("title", "cannot be empty")
	}
	if len(title) > maxTitleLength {
		return invalid("title", "cannot exceed %d characters", maxTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return invalid("description", "cannot exceed %d characters", maxDescriptionLength)
	}
	return nil
}

func validateAssignee(assignee string) error {
	if len(assignee) > maxAssigneeLength {
		return invalid("assignee", "cannot exceed %d characters", maxAssigneeLength)
	}
	return nil
}

func validateStatus(s models.Status) error {
	if !s.Valid() {
		return invalid("status", "%q (must be: TODO, IN_PROGRESS, DONE, BLOCKED)", s)
	}
	return nil
}

func validatePriority(p models.Priority) error {
	if !p.Valid() {
		return invalid("priority", "%q (must be: LOW, MEDIUM, HIGH, CRITICAL)", p)
	}
	return nil
}

func validatePosition(p float64) error {
	if err := position.Validate(p); err != nil {
		return invalid("position", "%v", err)
	}
	return nil
}
