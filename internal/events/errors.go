package events

import (
	"errors"
	"os"
	"syscall"
)

// ErrorCode represents daemon-related error types.
type ErrorCode int

const (
	ErrSocketNotFound ErrorCode = iota
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
)

// ErrQueueFull is returned by SendEvent when the batching queue is saturated
var ErrQueueFull = errors.New("event queue full")

// ErrNotConnected is returned when writing before Connect succeeded
var ErrNotConnected = errors.New("not connected to daemon")

// DaemonError represents a structured daemon error with context.
type DaemonError struct {
	Code    ErrorCode
	Message string
	Hint    string
}

// Error implements the error interface.
func (e *DaemonError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

// ClassifyDaemonError maps common errors to structured DaemonError types.
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return &DaemonError{
			Code:    ErrSocketNotFound,
			Message: "Socket file not found",
			Hint:    "Start daemon: lanes-daemon &",
		}
	}

	if errors.Is(err, os.ErrPermission) {
		return &DaemonError{
			Code:    ErrSocketPermission,
			Message: "Permission denied",
			Hint:    "Check ~/.lanes/ permissions: chmod 700 ~/.lanes/",
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ECONNREFUSED {
		return &DaemonError{
			Code:    ErrConnectionRefused,
			Message: "Connection refused",
			Hint:    "Daemon may have crashed. Remove the stale socket and restart lanes-daemon",
		}
	}

	return &DaemonError{
		Code:    ErrDaemonNotRunning,
		Message: "Daemon not running",
		Hint:    "Start daemon: lanes-daemon &",
	}
}
