package models

import (
	"sort"
	"time"
)

// Ticket represents a single card on the board
type Ticket struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	AssigneeID  string
	Source      string
	SourceURL   string
	Position    float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetID lets output formatters print just the identifier in quiet mode
func (t *Ticket) GetID() string {
	return t.ID
}

// Column returns the partition the ticket currently lives in
func (t *Ticket) Column() Column {
	return Column{ProjectID: t.ProjectID, Status: t.Status}
}

// Column is one kanban lane: every ticket sharing a project and a status
type Column struct {
	ProjectID string
	Status    Status
}

// Less reports whether a sorts before b within a column.
// Position decides, created_at breaks ties, and the id keeps the order total.
func Less(a, b *Ticket) bool {
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortTickets orders tickets in place using Less
func SortTickets(tickets []*Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return Less(tickets[i], tickets[j])
	})
}
