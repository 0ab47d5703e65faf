// Package tui is the interactive board: four columns of a project, keyboard
// driven reorder and move, live reloads from the daemon.
package tui

import (
	"context"
	"log/slog"

	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/lanes/internal/app"
	"github.com/thenoetrevino/lanes/internal/config"
	"github.com/thenoetrevino/lanes/internal/events"
	"github.com/thenoetrevino/lanes/internal/models"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// Model is the board state. It implements tea.Model.
type Model struct {
	ctx       context.Context
	tickets   ticketservice.Service
	projects  projectservice.Service
	projectID string

	project *models.Project
	board   ticketservice.Board

	// Selection. selectedID survives reloads so the cursor follows a ticket
	// after it moves.
	col        int
	row        int
	selectedID string

	keys   keyMap
	help   help.Model
	styles styles

	width  int
	height int

	busy      bool
	status    string
	statusErr bool

	eventChan <-chan events.Event
	logger    *slog.Logger
}

// New builds the board for projectID on top of a. When the app is connected
// to the daemon the board subscribes to the project's events.
func New(ctx context.Context, a *app.App, projectID string) Model {
	cfg := a.Config
	if cfg == nil {
		cfg = config.Default()
	}
	scheme := cfg.ColorScheme
	scheme.ApplyDefaults()
	keys := cfg.KeyMappings

	m := Model{
		ctx:       ctx,
		tickets:   a.TicketService,
		projects:  a.ProjectService,
		projectID: projectID,
		board:     emptyBoard(),
		keys:      newKeyMap(keys),
		help:      help.New(),
		styles:    newStyles(scheme),
		logger:    slog.Default(),
	}

	if client := a.Events(); client != nil {
		if err := client.Subscribe(projectID); err != nil {
			m.logger.Warn("failed to subscribe to project events", "error", err)
		}
		ch, err := client.Listen(ctx)
		if err != nil {
			m.logger.Warn("live updates disabled", "error", err)
		} else {
			m.eventChan = ch
		}
	}
	return m
}

// Init loads the board and starts listening for daemon events
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadBoard(), m.waitForEvent())
}

// Live reports whether the board receives daemon events
func (m Model) Live() bool {
	return m.eventChan != nil
}

// Selected returns the ticket under the cursor, nil in an empty column
func (m Model) Selected() *models.Ticket {
	column := m.board[models.AllStatuses[m.col]]
	if m.row < 0 || m.row >= len(column) {
		return nil
	}
	return column[m.row]
}

// Board returns the columns currently displayed
func (m Model) Board() ticketservice.Board {
	return m.board
}

func emptyBoard() ticketservice.Board {
	b := make(ticketservice.Board, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		b[st] = []*models.Ticket{}
	}
	return b
}

// Run starts the board in the terminal and blocks until the user quits
func Run(ctx context.Context, a *app.App, projectID string) error {
	p := tea.NewProgram(New(ctx, a, projectID), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
