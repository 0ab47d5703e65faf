package cli

import (
	"errors"

	"github.com/thenoetrevino/lanes/internal/database"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// Classification is how an error is presented: a machine readable code for
// --json, an exit code and an optional hint for humans
type Classification struct {
	Code       string
	Exit       int
	Suggestion string
}

// Classify maps service errors onto codes
func Classify(err error) Classification {
	switch {
	case errors.Is(err, ticketservice.ErrTicketNotFound):
		return Classification{"TICKET_NOT_FOUND", ExitNotFound,
			"Use 'lanes ticket list --project <id>' to see available tickets"}
	case errors.Is(err, ticketservice.ErrProjectNotFound), errors.Is(err, projectservice.ErrProjectNotFound):
		return Classification{"PROJECT_NOT_FOUND", ExitNotFound,
			"Use 'lanes project list' to see available projects or 'lanes project create' to create a new one"}
	case errors.Is(err, ticketservice.ErrPositionGapExhausted):
		return Classification{"POSITION_GAP_EXHAUSTED", ExitConflict,
			"Run 'lanes ticket rebalance --project <id> --status <status>' and retry, or pass --auto-rebalance"}
	case errors.Is(err, database.ErrTxConflict):
		return Classification{"TRANSACTION_CONFLICT", ExitTransient,
			"Another writer changed the column at the same time; retry the command"}
	case errors.Is(err, ticketservice.ErrValidation):
		return Classification{"VALIDATION_ERROR", ExitValidation, ""}
	case errors.Is(err, projectservice.ErrEmptyName), errors.Is(err, projectservice.ErrNameTooLong),
		errors.Is(err, projectservice.ErrInvalidKey), errors.Is(err, projectservice.ErrInvalidProjectID),
		errors.Is(err, projectservice.ErrNoUpdates):
		return Classification{"VALIDATION_ERROR", ExitValidation, ""}
	case errors.Is(err, projectservice.ErrProjectKeyExists):
		return Classification{"PROJECT_KEY_EXISTS", ExitConflict,
			"Choose another --key; 'lanes project list' shows the keys in use"}
	case errors.Is(err, projectservice.ErrProjectHasTickets):
		return Classification{"PROJECT_NOT_EMPTY", ExitValidation,
			"Pass --force to delete the project together with its tickets"}
	}
	return Classification{"INTERNAL_ERROR", ExitFailure, ""}
}
