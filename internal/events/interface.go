package events

import "context"

// EventPublisher is what services and the board need from a daemon
// connection. A nil EventPublisher means live updates are off.
type EventPublisher interface {
	Connect(ctx context.Context) error

	// SendEvent queues a column or project change; it never blocks on the socket
	SendEvent(event Event) error

	// Listen streams events for the current subscription until ctx ends
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe narrows delivery to one project, "" for every project
	Subscribe(projectID string) error

	Close() error
}

var _ EventPublisher = (*Client)(nil)
