package colors

// ColorScheme defines all configurable color values
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome", "wave")
	Preset string `yaml:"preset" mapstructure:"preset"`

	// Primary accent color (used for selections, titles, highlights)
	Accent string `yaml:"accent" mapstructure:"accent"`

	// UI element colors
	ColumnBorder   string `yaml:"column_border" mapstructure:"column_border"`
	TicketBorder   string `yaml:"ticket_border" mapstructure:"ticket_border"`
	SelectedBorder string `yaml:"selected_border" mapstructure:"selected_border"`

	// Text colors
	Title  string `yaml:"title" mapstructure:"title"`
	Subtle string `yaml:"subtle" mapstructure:"subtle"` // Muted text such as position keys
	Normal string `yaml:"normal" mapstructure:"normal"`

	// Priority badges
	Low      string `yaml:"low" mapstructure:"low"`
	Medium   string `yaml:"medium" mapstructure:"medium"`
	High     string `yaml:"high" mapstructure:"high"`
	Critical string `yaml:"critical" mapstructure:"critical"`

	// Status line
	InfoFg  string `yaml:"info_fg" mapstructure:"info_fg"`
	ErrorFg string `yaml:"error_fg" mapstructure:"error_fg"`
}

// Presets lists the built-in scheme names
var Presets = []string{"default", "monochrome", "wave"}

// GetPreset returns a preset color scheme by name, falling back to the default
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	case "wave":
		return Wave()
	default:
		return Default()
	}
}

// ApplyDefaults fills in missing color values using the preset as base
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}
	c.MergeFrom(*preset, false)
}

// MergeFrom copies colors from other. With override set every non-empty color
// in other wins, otherwise only blank colors in c are filled.
func (c *ColorScheme) MergeFrom(other ColorScheme, override bool) {
	pairs := []struct {
		dst *string
		src string
	}{
		{&c.Accent, other.Accent},
		{&c.ColumnBorder, other.ColumnBorder},
		{&c.TicketBorder, other.TicketBorder},
		{&c.SelectedBorder, other.SelectedBorder},
		{&c.Title, other.Title},
		{&c.Subtle, other.Subtle},
		{&c.Normal, other.Normal},
		{&c.Low, other.Low},
		{&c.Medium, other.Medium},
		{&c.High, other.High},
		{&c.Critical, other.Critical},
		{&c.InfoFg, other.InfoFg},
		{&c.ErrorFg, other.ErrorFg},
	}
	for _, p := range pairs {
		if p.src == "" {
			continue
		}
		if override || *p.dst == "" {
			*p.dst = p.src
		}
	}
}
