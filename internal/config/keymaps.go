package config

// KeyMappings defines all configurable key bindings of the board
type KeyMappings struct {
	// Navigation
	PrevColumn string `yaml:"prev_column" mapstructure:"prev_column"`
	NextColumn string `yaml:"next_column" mapstructure:"next_column"`
	PrevTicket string `yaml:"prev_ticket" mapstructure:"prev_ticket"`
	NextTicket string `yaml:"next_ticket" mapstructure:"next_ticket"`

	// Ordering
	MoveTicketUp    string `yaml:"move_ticket_up" mapstructure:"move_ticket_up"`
	MoveTicketDown  string `yaml:"move_ticket_down" mapstructure:"move_ticket_down"`
	MoveTicketLeft  string `yaml:"move_ticket_left" mapstructure:"move_ticket_left"`
	MoveTicketRight string `yaml:"move_ticket_right" mapstructure:"move_ticket_right"`
	SendToTop       string `yaml:"send_to_top" mapstructure:"send_to_top"`
	Rebalance       string `yaml:"rebalance" mapstructure:"rebalance"`

	// Other
	Refresh  string `yaml:"refresh" mapstructure:"refresh"`
	ShowHelp string `yaml:"show_help" mapstructure:"show_help"`
	Quit     string `yaml:"quit" mapstructure:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		PrevColumn: "h",
		NextColumn: "l",
		PrevTicket: "k",
		NextTicket: "j",

		MoveTicketUp:    "K",
		MoveTicketDown:  "J",
		MoveTicketLeft:  "H",
		MoveTicketRight: "L",
		SendToTop:       "t",
		Rebalance:       "R",

		Refresh:  "r",
		ShowHelp: "?",
		Quit:     "q",
	}
}

// applyDefaults fills in missing key mappings with defaults
func (k *KeyMappings) applyDefaults() {
	defaults := DefaultKeyMappings()

	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&k.PrevColumn, defaults.PrevColumn)
	fill(&k.NextColumn, defaults.NextColumn)
	fill(&k.PrevTicket, defaults.PrevTicket)
	fill(&k.NextTicket, defaults.NextTicket)
	fill(&k.MoveTicketUp, defaults.MoveTicketUp)
	fill(&k.MoveTicketDown, defaults.MoveTicketDown)
	fill(&k.MoveTicketLeft, defaults.MoveTicketLeft)
	fill(&k.MoveTicketRight, defaults.MoveTicketRight)
	fill(&k.SendToTop, defaults.SendToTop)
	fill(&k.Rebalance, defaults.Rebalance)
	fill(&k.Refresh, defaults.Refresh)
	fill(&k.ShowHelp, defaults.ShowHelp)
	fill(&k.Quit, defaults.Quit)
}
