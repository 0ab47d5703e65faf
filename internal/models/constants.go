package models

import (
	"fmt"
	"strings"
)

// ============================================================================
// STATUS CONSTANTS
// ============================================================================

// Status identifies the column a ticket belongs to
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusBlocked    Status = "BLOCKED"
)

// DefaultStatus is the column new tickets land in when none is given
const DefaultStatus = StatusTodo

// AllStatuses lists every status in board order
var AllStatuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusBlocked}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Index returns the board position of the status, or -1 if unknown
func (s Status) Index() int {
	for i, st := range AllStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns a human readable column title
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	}
	return string(s)
}

// ParseStatus accepts the canonical form as well as lower case and
// dashed/spaced variants ("in progress", "in-progress").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	st := Status(norm)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status '%s' (must be: todo, in_progress, done, blocked)", s)
	}
	return st, nil
}

// ============================================================================
// PRIORITY CONSTANTS
// ============================================================================

// Priority is the urgency of a ticket
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// DefaultPriority is applied when a ticket is created without one
const DefaultPriority = PriorityMedium

// AllPriorities lists priorities from least to most urgent
var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities LOW < MEDIUM < HIGH < CRITICAL. Unknown values rank -1.
func (p Priority) Rank() int {
	for i, pr := range AllPriorities {
		if pr == p {
			return i
		}
	}
	return -1
}

// ParsePriority accepts any casing of a known priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority '%s' (must be: low, medium, high, critical)", s)
	}
	return p, nil
}

// ============================================================================
// SOURCE CONSTANTS
// ============================================================================

// DefaultSource marks tickets created by hand rather than imported
const DefaultSource = "MANUAL"
