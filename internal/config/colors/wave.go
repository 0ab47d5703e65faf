package colors

// Kanagawa wave palette
const (
	oniViolet   = "#957FB8"
	sumiInk4    = "#54546D"
	sumiInk6    = "#727169"
	waveAqua2   = "#7AA89F"
	crystalBlue = "#7E9CD8"
	fujiGray    = "#727169"
	fujiWhite   = "#DCD7BA"
	springGreen = "#98BB6C"
	roninYellow = "#FF9E3B"
	peachRed    = "#FF5D62"
	samuraiRed  = "#E82424"
	dragonBlue  = "#658594"
)

// Wave returns the Kanagawa Wave color scheme (dark theme with blue/purple accents)
func Wave() *ColorScheme {
	return &ColorScheme{
		Preset: "wave",

		// Primary accent color
		Accent: oniViolet,

		// UI element colors
		ColumnBorder:   sumiInk6,
		TicketBorder:   sumiInk4,
		SelectedBorder: waveAqua2,

		// Text colors
		Title:  crystalBlue,
		Subtle: fujiGray,
		Normal: fujiWhite,

		Low:      springGreen,
		Medium:   crystalBlue,
		High:     roninYellow,
		Critical: peachRed,

		InfoFg:  dragonBlue,
		ErrorFg: samuraiRed,
	}
}
