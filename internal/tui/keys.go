package tui

import (
	"charm.land/bubbles/v2/key"

	"github.com/thenoetrevino/lanes/internal/config"
)

// keyMap binds the configured keys. It implements help.KeyMap.
type keyMap struct {
	PrevColumn key.Binding
	NextColumn key.Binding
	PrevTicket key.Binding
	NextTicket key.Binding

	MoveUp    key.Binding
	MoveDown  key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	SendToTop key.Binding
	Rebalance key.Binding

	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap(km config.KeyMappings) keyMap {
	return keyMap{
		PrevColumn: key.NewBinding(key.WithKeys(km.PrevColumn, "left"), key.WithHelp(km.PrevColumn+"/←", "prev column")),
		NextColumn: key.NewBinding(key.WithKeys(km.NextColumn, "right"), key.WithHelp(km.NextColumn+"/→", "next column")),
		PrevTicket: key.NewBinding(key.WithKeys(km.PrevTicket, "up"), key.WithHelp(km.PrevTicket+"/↑", "prev ticket")),
		NextTicket: key.NewBinding(key.WithKeys(km.NextTicket, "down"), key.WithHelp(km.NextTicket+"/↓", "next ticket")),

		MoveUp:    key.NewBinding(key.WithKeys(km.MoveTicketUp), key.WithHelp(km.MoveTicketUp, "move up")),
		MoveDown:  key.NewBinding(key.WithKeys(km.MoveTicketDown), key.WithHelp(km.MoveTicketDown, "move down")),
		MoveLeft:  key.NewBinding(key.WithKeys(km.MoveTicketLeft), key.WithHelp(km.MoveTicketLeft, "move to prev column")),
		MoveRight: key.NewBinding(key.WithKeys(km.MoveTicketRight), key.WithHelp(km.MoveTicketRight, "move to next column")),
		SendToTop: key.NewBinding(key.WithKeys(km.SendToTop), key.WithHelp(km.SendToTop, "send to top")),
		Rebalance: key.NewBinding(key.WithKeys(km.Rebalance), key.WithHelp(km.Rebalance, "rebalance column")),

		Refresh: key.NewBinding(key.WithKeys(km.Refresh), key.WithHelp(km.Refresh, "refresh")),
		Help:    key.NewBinding(key.WithKeys(km.ShowHelp), key.WithHelp(km.ShowHelp, "toggle help")),
		Quit:    key.NewBinding(key.WithKeys(km.Quit, "ctrl+c"), key.WithHelp(km.Quit, "quit")),
	}
}

// ShortHelp is shown in the status line
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MoveUp, k.MoveDown, k.SendToTop, k.Help, k.Quit}
}

// FullHelp is shown when help is toggled on
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevColumn, k.NextColumn, k.PrevTicket, k.NextTicket},
		{k.MoveUp, k.MoveDown, k.MoveLeft, k.MoveRight},
		{k.SendToTop, k.Rebalance, k.Refresh},
		{k.Help, k.Quit},
	}
}
