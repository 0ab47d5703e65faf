package colors

// Monochrome returns a black and white color scheme
func Monochrome() *ColorScheme {
	return &ColorScheme{
		Preset: "monochrome",

		Accent: "#FFFFFF",

		ColumnBorder:   "#FFFFFF",
		TicketBorder:   "#585858",
		SelectedBorder: "#FFFFFF",

		Title:  "#FFFFFF",
		Subtle: "#585858",
		Normal: "#D0D0D0",

		Low:      "#808080",
		Medium:   "#D0D0D0",
		High:     "#FFFFFF",
		Critical: "#FFFFFF",

		InfoFg:  "#FFFFFF",
		ErrorFg: "#FFFFFF",
	}
}
