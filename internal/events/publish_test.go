package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRetryPublisher fails the first failUntil sends
type mockRetryPublisher struct {
	sendAttempts int
	failUntil    int
	lastEvent    Event
}

func (m *mockRetryPublisher) SendEvent(event Event) error {
	m.lastEvent = event
	currentAttempt := m.sendAttempts
	m.sendAttempts++

	if currentAttempt < m.failUntil {
		return errors.New("simulated send failure")
	}
	return nil
}

// Unused interface methods
func (m *mockRetryPublisher) Connect(ctx context.Context) error                { return nil }
func (m *mockRetryPublisher) Listen(ctx context.Context) (<-chan Event, error) { return nil, nil }
func (m *mockRetryPublisher) Subscribe(projectID string) error                 { return nil }
func (m *mockRetryPublisher) Close() error                                     { return nil }

func TestPublishWithRetry_Success(t *testing.T) {
	t.Parallel()

	mock := &mockRetryPublisher{}
	err := PublishWithRetry(mock, Event{Type: EventColumnChanged, ProjectID: "p1"}, 3)

	require.NoError(t, err)
	assert.Equal(t, 1, mock.sendAttempts)
	assert.Equal(t, "p1", mock.lastEvent.ProjectID)
}

func TestPublishWithRetry_SuccessAfterRetries(t *testing.T) {
	t.Parallel()

	mock := &mockRetryPublisher{failUntil: 2}
	err := PublishWithRetry(mock, Event{Type: EventColumnChanged, ProjectID: "p2"}, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, mock.sendAttempts)
}

func TestPublishWithRetry_FailureAfterAllRetries(t *testing.T) {
	t.Parallel()

	mock := &mockRetryPublisher{failUntil: 999}
	err := PublishWithRetry(mock, Event{Type: EventColumnChanged, ProjectID: "p3"}, 3)

	require.Error(t, err)
	assert.Equal(t, 3, mock.sendAttempts)
}

func TestPublishWithRetry_NilClient(t *testing.T) {
	t.Parallel()

	assert.NoError(t, PublishWithRetry(nil, Event{Type: EventColumnChanged}, 3))
}
