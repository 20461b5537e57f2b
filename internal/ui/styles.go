package ui

import "github.com/charmbracelet/lipgloss"

// palette is the set of colors one theme draws with.
type palette struct {
	fg        lipgloss.Color
	bg        lipgloss.Color
	primary   lipgloss.Color
	secondary lipgloss.Color
	muted     lipgloss.Color
	highlight lipgloss.Color
	bar       lipgloss.Color
	danger    lipgloss.Color
}

var darkPalette = palette{
	fg:        lipgloss.Color("255"),
	bg:        lipgloss.Color("235"),
	primary:   lipgloss.Color("62"),  // Purple
	secondary: lipgloss.Color("241"), // Gray
	muted:     lipgloss.Color("240"), // Darker gray
	highlight: lipgloss.Color("212"), // Pink
	bar:       lipgloss.Color("236"),
	danger:    lipgloss.Color("196"),
}

var lightPalette = palette{
	fg:        lipgloss.Color("235"),
	bg:        lipgloss.Color("255"),
	primary:   lipgloss.Color("25"),  // Blue
	secondary: lipgloss.Color("242"),
	muted:     lipgloss.Color("246"),
	highlight: lipgloss.Color("161"), // Magenta
	bar:       lipgloss.Color("253"),
	danger:    lipgloss.Color("160"),
}

// Theme holds every style the app renders with. Rebuilt when the dark mode
// preference changes.
type Theme struct {
	Dark bool

	Header        lipgloss.Style
	SelectedItem  lipgloss.Style
	NormalItem    lipgloss.Style
	MetaItem      lipgloss.Style
	FavoriteMark  lipgloss.Style
	DetailTitle   lipgloss.Style
	DetailMeta    lipgloss.Style
	StatusBar     lipgloss.Style
	StatusBarKey  lipgloss.Style
	StatusBarText lipgloss.Style
	ErrorStyle    lipgloss.Style
	HelpStyle     lipgloss.Style
	SearchBar     lipgloss.Style
	SearchPrompt  lipgloss.Style
	Spinner       lipgloss.Style
}

// NewTheme builds the dark or light theme.
func NewTheme(dark bool) Theme {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Theme{
		Dark: dark,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.highlight).
			Padding(0, 1),

		SelectedItem: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(p.primary).
			Padding(0, 1),

		NormalItem: lipgloss.NewStyle().
			Foreground(p.fg).
			Padding(0, 1),

		MetaItem: lipgloss.NewStyle().
			Foreground(p.secondary),

		FavoriteMark: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),

		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.fg).
			Padding(0, 1),

		DetailMeta: lipgloss.NewStyle().
			Foreground(p.secondary).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.fg).
			Background(p.bar).
			Padding(0, 1),

		StatusBarKey: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),

		StatusBarText: lipgloss.NewStyle().
			Foreground(p.secondary),

		ErrorStyle: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true).
			Padding(0, 1),

		HelpStyle: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(1, 2),

		SearchBar: lipgloss.NewStyle().
			Foreground(p.fg).
			Background(p.bar).
			Padding(0, 1),

		SearchPrompt: lipgloss.NewStyle().
			Foreground(p.highlight).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(p.primary),
	}
}
