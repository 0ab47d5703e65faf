package tui

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/thenoetrevino/lanes/internal/models"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.project = msg.project
		m.board = msg.board
		m.restoreSelection()
		return m, nil

	case RefreshMsg:
		if msg.Event.Matches(m.projectID) {
			return m, tea.Batch(m.loadBoard(), m.waitForEvent())
		}
		return m, m.waitForEvent()

	case opDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, m.loadBoard()
		}
		if msg.ticket != nil {
			m.selectedID = msg.ticket.ID
			m.setInfo(fmt.Sprintf("%s %s", msg.ticket.Title, msg.verb))
		} else {
			m.setInfo(msg.verb)
		}
		return m, m.loadBoard()

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadBoard()

	case key.Matches(msg, m.keys.PrevColumn):
		m.selectColumn(m.col - 1)
	case key.Matches(msg, m.keys.NextColumn):
		m.selectColumn(m.col + 1)
	case key.Matches(msg, m.keys.PrevTicket):
		m.selectRow(m.row - 1)
	case key.Matches(msg, m.keys.NextTicket):
		m.selectRow(m.row + 1)
	}

	// Writes are serialized: ignore ordering keys while one is in flight
	if m.busy {
		return m, nil
	}

	selected := m.Selected()
	status := models.AllStatuses[m.col]
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Rebalance):
		cmd = m.rebalance(status)
	case selected == nil:
		return m, nil
	case key.Matches(msg, m.keys.MoveUp):
		if m.row > 0 {
			cmd = m.move(selected, status, m.row-1, "moved up")
		}
	case key.Matches(msg, m.keys.MoveDown):
		if m.row < len(m.board[status])-1 {
			cmd = m.move(selected, status, m.row+1, "moved down")
		}
	case key.Matches(msg, m.keys.MoveLeft):
		if m.col > 0 {
			to := models.AllStatuses[m.col-1]
			cmd = m.move(selected, to, m.row, "moved to "+to.Label())
		}
	case key.Matches(msg, m.keys.MoveRight):
		if m.col < len(models.AllStatuses)-1 {
			to := models.AllStatuses[m.col+1]
			cmd = m.move(selected, to, m.row, "moved to "+to.Label())
		}
	case key.Matches(msg, m.keys.SendToTop):
		if m.row > 0 {
			cmd = m.sendToTop(selected)
		}
	}

	if cmd != nil {
		m.busy = true
	}
	return m, cmd
}

func (m *Model) selectColumn(col int) {
	m.col = max(0, min(col, len(models.AllStatuses)-1))
	m.selectRow(m.row)
}

func (m *Model) selectRow(row int) {
	n := len(m.board[models.AllStatuses[m.col]])
	m.row = max(0, min(row, n-1))
	if t := m.Selected(); t != nil {
		m.selectedID = t.ID
	}
}

// restoreSelection puts the cursor back on selectedID after a reload, or
// clamps it into the current column when the ticket is gone
func (m *Model) restoreSelection() {
	if m.selectedID != "" {
		for c, st := range models.AllStatuses {
			for r, t := range m.board[st] {
				if t.ID == m.selectedID {
					m.col, m.row = c, r
					return
				}
			}
		}
	}
	m.selectRow(m.row)
}

func (m *Model) setInfo(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.statusErr = true
	switch {
	case errors.Is(err, ticketservice.ErrPositionGapExhausted):
		m.status = fmt.Sprintf("no room left, press %s to rebalance the column", m.keys.Rebalance.Help().Key)
	case errors.Is(err, ticketservice.ErrTxConflict):
		m.status = "another writer changed the board, try again"
	default:
		m.status = err.Error()
	}
	m.logger.Warn("board operation failed", "error", err)
}
