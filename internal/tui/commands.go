package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/lanes/internal/events"
	"github.com/thenoetrevino/lanes/internal/models"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// boardLoadedMsg carries a fresh copy of the board
type boardLoadedMsg struct {
	project *models.Project
	board   ticketservice.Board
	err     error
}

// RefreshMsg is delivered when the daemon reports a change
type RefreshMsg struct {
	Event events.Event
}

// opDoneMsg reports the outcome of a write started from the keyboard
type opDoneMsg struct {
	verb   string
	ticket *models.Ticket
	err    error
}

func (m Model) loadBoard() tea.Cmd {
	ctx, tickets, projects, projectID := m.ctx, m.tickets, m.projects, m.projectID
	return func() tea.Msg {
		project, err := projects.GetProject(ctx, projectID)
		if err != nil {
			return boardLoadedMsg{err: err}
		}
		board, err := tickets.Board(ctx, projectID)
		return boardLoadedMsg{project: project, board: board, err: err}
	}
}

// waitForEvent blocks on the daemon channel; nil when live updates are off
func (m Model) waitForEvent() tea.Cmd {
	if m.eventChan == nil {
		return nil
	}
	ch, ctx := m.eventChan, m.ctx
	return func() tea.Msg {
		select {
		case event, ok := <-ch:
			if !ok {
				// Channel closed, connection lost
				return nil
			}
			return RefreshMsg{Event: event}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) move(t *models.Ticket, status models.Status, index int, verb string) tea.Cmd {
	ctx, tickets := m.ctx, m.tickets
	return func() tea.Msg {
		moved, err := tickets.MoveTicket(ctx, t.ID, ticketservice.MoveRequest{Status: status, Index: index})
		return opDoneMsg{verb: verb, ticket: moved, err: err}
	}
}

func (m Model) sendToTop(t *models.Ticket) tea.Cmd {
	ctx, tickets := m.ctx, m.tickets
	return func() tea.Msg {
		// Moves leave columns dense, so the top usually needs a rebalance first
		autoRebalance := true
		moved, err := tickets.ReorderTicket(ctx, t.ID, ticketservice.ReorderRequest{AutoRebalance: &autoRebalance})
		return opDoneMsg{verb: "sent to top", ticket: moved, err: err}
	}
}

func (m Model) rebalance(status models.Status) tea.Cmd {
	ctx, tickets, projectID := m.ctx, m.tickets, m.projectID
	return func() tea.Msg {
		err := tickets.RebalanceColumn(ctx, projectID, status)
		return opDoneMsg{verb: "rebalanced " + status.Label(), err: err}
	}
}
