package colors

// Default returns the default color scheme (purple theme)
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",

		// Primary
		Accent: "#874BFD",

		// UI elements
		ColumnBorder:   "#5F87D7",
		TicketBorder:   "#585858",
		SelectedBorder: "#D75FD7",

		// Text
		Title:  "#D75FD7",
		Subtle: "#585858",
		Normal: "#D0D0D0",

		// Priorities
		Low:      "#5FD75F",
		Medium:   "#5F87D7",
		High:     "#FFD700",
		Critical: "#FF0000",

		InfoFg:  "#00AFFF",
		ErrorFg: "#FF0000",
	}
}
