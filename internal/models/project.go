package models

import "time"

// Project represents a container for ticket columns.
// Projects are the top-level partition key of every column.
type Project struct {
	ID string
	// Key is a short unique uppercase handle such as "API"
	Key         string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetID lets output formatters print just the identifier in quiet mode
func (p *Project) GetID() string {
	return p.ID
}
