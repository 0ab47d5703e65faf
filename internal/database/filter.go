package database

import (
	"fmt"
	"strings"

	"github.com/thenoetrevino/lanes/internal/models"
)

// TicketFilter selects tickets. Every field is optional: nil means the
// condition is absent, never "match the zero value".
type TicketFilter struct {
	ID         *string
	ProjectID  *string
	Status     *models.Status
	Priority   *models.Priority
	AssigneeID *string
	// Search matches title or description, case-insensitive
	Search *string
	// ExcludeID drops one ticket, typically the one being moved
	ExcludeID *string

	Limit  int
	Offset int
}

// ColumnFilter selects every ticket of one column
func ColumnFilter(col models.Column) TicketFilter {
	return TicketFilter{ProjectID: &col.ProjectID, Status: &col.Status}
}

// Without returns a copy of f that skips the ticket with the given id
func (f TicketFilter) Without(id string) TicketFilter {
	f.ExcludeID = &id
	return f
}

// where evaluates the filter once into a predicate and its arguments
func (f TicketFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.ID != nil {
		conds = append(conds, "id = ?")
		args = append(args, *f.ID)
	}
	if f.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, string(*f.Priority))
	}
	if f.AssigneeID != nil {
		conds = append(conds, "assignee_id = ?")
		args = append(args, *f.AssigneeID)
	}
	if f.Search != nil {
		conds = append(conds, "(INSTR(LOWER(title), LOWER(?)) > 0 OR INSTR(LOWER(description), LOWER(?)) > 0)")
		args = append(args, *f.Search, *f.Search)
	}
	if f.ExcludeID != nil {
		conds = append(conds, "id <> ?")
		args = append(args, *f.ExcludeID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// SortField is a column tickets can be ordered by
type SortField string

const (
	SortPosition  SortField = "position"
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortPriority  SortField = "priority"
	SortStatus    SortField = "status"
)

// ParseSortField accepts the snake_case and camelCase spellings
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "position":
		return SortPosition, nil
	case "createdat":
		return SortCreatedAt, nil
	case "updatedat":
		return SortUpdatedAt, nil
	case "priority":
		return SortPriority, nil
	case "status":
		return SortStatus, nil
	}
	return "", fmt.Errorf("invalid sort field '%s' (must be: position, created_at, updated_at, priority, status)", s)
}

// OrderBy is one sort key
type OrderBy struct {
	Field SortField
	Desc  bool
}

// ColumnOrder is the canonical in-column order: position, then creation time, then id
var ColumnOrder = []OrderBy{{Field: SortPosition}, {Field: SortCreatedAt}}

// priorityRankSQL ranks priorities in the database so pagination stays consistent
var priorityRankSQL = rankCase("priority", func() []string {
	out := make([]string, len(models.AllPriorities))
	for i, p := range models.AllPriorities {
		out[i] = string(p)
	}
	return out
}())

var statusRankSQL = rankCase("status", func() []string {
	out := make([]string, len(models.AllStatuses))
	for i, s := range models.AllStatuses {
		out[i] = string(s)
	}
	return out
}())

func rankCase(column string, values []string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, v := range values {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i)
	}
	b.WriteString(" END")
	return b.String()
}

func orderClause(order []OrderBy) string {
	if len(order) == 0 {
		order = ColumnOrder
	}

	parts := make([]string, 0, len(order)+1)
	for _, o := range order {
		var expr string
		switch o.Field {
		case SortPriority:
			expr = priorityRankSQL
		case SortStatus:
			expr = statusRankSQL
		case SortPosition, SortCreatedAt, SortUpdatedAt:
			expr = string(o.Field)
		default:
			continue
		}
		if o.Desc {
			expr += " DESC"
		}
		parts = append(parts, expr)
	}
	// id keeps the order total when every other key ties
	parts = append(parts, "id")

	return " ORDER BY " + strings.Join(parts, ", ")
}

func (f TicketFilter) limitClause() string {
	if f.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
}
