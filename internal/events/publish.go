package events

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PublishWithRetry attempts to publish an event with retry logic.
// It makes up to maxRetries attempts with exponential backoff and returns the
// error from the final attempt if all of them fail.
//
// Meant for non-critical events: a failure is logged and must not fail the
// mutation that produced the event.
func PublishWithRetry(client EventPublisher, event Event, maxRetries int) error {
	if client == nil {
		return nil // No daemon configured (tests, --no-daemon)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return client.SendEvent(event)
	}, backoff.WithMaxRetries(bo, uint64(maxRetries-1)), func(err error, delay time.Duration) {
		slog.Debug("event publish failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"retry_delay", delay,
			"error", err)
	})
	if err != nil {
		// Warn level since this affects live updates
		slog.Warn("event publish failed after all retries",
			"attempts", attempt,
			"event_type", event.Type,
			"project_id", event.ProjectID,
			"error", err)
		return err
	}

	if attempt > 1 {
		slog.Debug("event published after retry",
			"attempt", attempt,
			"event_type", event.Type,
			"project_id", event.ProjectID)
	}
	return nil
}
