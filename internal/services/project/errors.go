package project

import "errors"

var (
	// Rejected input, reported before the store is touched
	ErrEmptyName        = errors.New("project name cannot be empty")
	ErrNameTooLong      = errors.New("project name cannot exceed 100 characters")
	ErrInvalidKey       = errors.New("project key must be 2 to 10 characters")
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrNoUpdates        = errors.New("nothing to update")

	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectKeyExists  = errors.New("project with this key already exists")
	ErrProjectHasTickets = errors.New("cannot delete project with tickets")
)
