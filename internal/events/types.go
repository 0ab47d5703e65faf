package events

import "time"

// ProtocolVersion is bumped whenever the wire format changes incompatibly
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	// EventColumnChanged reports that ticket order or membership changed in
	// one or more columns of a project
	EventColumnChanged EventType = "column_changed"
	// EventProjectChanged reports that a project was created or deleted
	EventProjectChanged EventType = "project_changed"
	EventPing           EventType = "ping"
	EventPong           EventType = "pong"
)

// Event represents a change notification
type Event struct {
	Type      EventType
	ProjectID string   // For filtering - "" means every project
	Statuses  []string `json:",omitempty"` // Columns touched, empty when unknown
	TicketID  string   `json:",omitempty"`
	Timestamp time.Time
	// SequenceID is assigned by the daemon and increases monotonically
	SequenceID int64
}

// SubscribeMessage is sent by clients to subscribe to specific project updates
type SubscribeMessage struct {
	ProjectID string // "" = all projects
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}

// Matches reports whether a subscriber to projectID should see e
func (e Event) Matches(projectID string) bool {
	return e.ProjectID == "" || projectID == "" || e.ProjectID == projectID
}

// merge folds other into e. Events for different projects collapse into an
// "all projects" event.
func (e *Event) merge(other Event) {
	if e.ProjectID != other.ProjectID {
		e.ProjectID = ""
		e.Statuses = nil
		e.TicketID = ""
		return
	}
	if e.TicketID != other.TicketID {
		e.TicketID = ""
	}
	for _, s := range other.Statuses {
		found := false
		for _, existing := range e.Statuses {
			if existing == s {
				found = true
				break
			}
		}
		if !found {
			e.Statuses = append(e.Statuses, s)
		}
	}
	if other.Type != e.Type {
		e.Type = EventColumnChanged
	}
	if other.Timestamp.After(e.Timestamp) {
		e.Timestamp = other.Timestamp
	}
}
