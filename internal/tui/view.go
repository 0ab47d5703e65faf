package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/lanes/internal/config/colors"
	"github.com/thenoetrevino/lanes/internal/models"
)

const columnWidth = 30

type styles struct {
	column         lipgloss.Style
	activeColumn   lipgloss.Style
	columnTitle    lipgloss.Style
	ticket         lipgloss.Style
	selectedTicket lipgloss.Style
	position       lipgloss.Style
	title          lipgloss.Style
	info           lipgloss.Style
	err            lipgloss.Style
	priority       map[models.Priority]lipgloss.Style
}

func newStyles(scheme colors.ColorScheme) styles {
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(scheme.ColumnBorder)).
		Padding(0, 1).
		Width(columnWidth)
	ticket := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(scheme.TicketBorder)).
		Width(columnWidth - 4)

	return styles{
		column:         column,
		activeColumn:   column.BorderForeground(lipgloss.Color(scheme.Accent)),
		columnTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(scheme.Title)),
		ticket:         ticket,
		selectedTicket: ticket.BorderForeground(lipgloss.Color(scheme.SelectedBorder)),
		position:       lipgloss.NewStyle().Foreground(lipgloss.Color(scheme.Subtle)),
		title:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(scheme.Accent)),
		info:           lipgloss.NewStyle().Foreground(lipgloss.Color(scheme.InfoFg)),
		err:            lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(scheme.ErrorFg)),
		priority: map[models.Priority]lipgloss.Style{
			models.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color(scheme.Low)),
			models.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color(scheme.Medium)),
			models.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color(scheme.High)),
			models.PriorityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(scheme.Critical)),
		},
	}
}

// View renders the board
func (m Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.Content = m.render()
	return view
}

func (m Model) render() string {
	var b strings.Builder

	header := "lanes"
	if m.project != nil {
		header = m.project.Name
	}
	if m.Live() {
		header += "  " + m.styles.info.Render("● live")
	}
	b.WriteString(m.styles.title.Render(header))
	b.WriteString("\n\n")

	columns := make([]string, len(models.AllStatuses))
	for i, st := range models.AllStatuses {
		columns[i] = m.renderColumn(i, st)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	b.WriteString("\n")

	if m.status != "" {
		style := m.styles.info
		if m.statusErr {
			style = m.styles.err
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderColumn(index int, status models.Status) string {
	tickets := m.board[status]
	var b strings.Builder
	b.WriteString(m.styles.columnTitle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(tickets))))
	for r, t := range tickets {
		b.WriteString("\n")
		b.WriteString(m.renderTicket(t, index == m.col && r == m.row))
	}
	if len(tickets) == 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.position.Render("empty"))
	}

	if index == m.col {
		return m.styles.activeColumn.Render(b.String())
	}
	return m.styles.column.Render(b.String())
}

func (m Model) renderTicket(t *models.Ticket, selected bool) string {
	body := t.Title + "\n" +
		m.styles.priority[t.Priority].Render(string(t.Priority)) + " " +
		m.styles.position.Render(fmt.Sprintf("%.6g", t.Position))
	if selected {
		return m.styles.selectedTicket.Render(body)
	}
	return m.styles.ticket.Render(body)
}
