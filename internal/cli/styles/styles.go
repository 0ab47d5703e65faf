// Package styles holds the lipgloss styles shared by human readable CLI output
package styles

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/thenoetrevino/lanes/internal/config"
	"github.com/thenoetrevino/lanes/internal/config/colors"
	"github.com/thenoetrevino/lanes/internal/models"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 80

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Status:", "Priority:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Description"

	// Board styles
	ColumnStyle      lipgloss.Style
	ColumnTitleStyle lipgloss.Style
	ColumnWidth      = 28
	PositionStyle    lipgloss.Style
	SuccessStyle     lipgloss.Style
	ErrorStyle       lipgloss.Style
	priorityColors   map[models.Priority]string
)

func init() {
	Init(*colors.Default())
}

// Init initializes all CLI styles with the given color scheme
func Init(scheme config.ColorScheme) {
	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(scheme.TicketBorder)).
		Padding(1, 2).
		Width(CardWidth)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(scheme.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(scheme.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(scheme.Accent)).
		Bold(true).
		MarginTop(1)

	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(scheme.ColumnBorder)).
		Padding(0, 1).
		Width(ColumnWidth)

	ColumnTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.Title)).
		MarginBottom(1)

	PositionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(scheme.Subtle))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.InfoFg))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(scheme.ErrorFg))

	priorityColors = map[models.Priority]string{
		models.PriorityLow:      scheme.Low,
		models.PriorityMedium:   scheme.Medium,
		models.PriorityHigh:     scheme.High,
		models.PriorityCritical: scheme.Critical,
	}
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// ColoredText renders text with a hex color
func ColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// RenderPriority renders a priority as a colored badge
func RenderPriority(p models.Priority) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(priorityColors[p])).
		Render(string(p))
}

// RenderPosition renders an ordering key compactly
func RenderPosition(p float64) string {
	return PositionStyle.Render(fmt.Sprintf("%.6g", p))
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}

// RenderColumn renders one lane of the board
func RenderColumn(title string, body string) string {
	return ColumnStyle.Render(ColumnTitleStyle.Render(title) + "\n" + body)
}
