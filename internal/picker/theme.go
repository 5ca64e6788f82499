package picker

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the target picker.
// Use DarkTheme() or LightTheme() to get a pre-built theme,
// or construct a custom Theme.
type Theme struct {
	Primary        lipgloss.Color // title, prompt
	Secondary      lipgloss.Color // highlighted row text
	Accent         lipgloss.Color // fuzzy-matched characters
	Error          lipgloss.Color // parse errors
	Text           lipgloss.Color // primary text
	TextMuted      lipgloss.Color // descriptions, hints
	BackgroundElem lipgloss.Color // highlighted row background
	Border         lipgloss.Color // section separators
}

// DarkTheme returns the default dark theme.
func DarkTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#fab283"),
		Secondary:      lipgloss.Color("#5c9cf5"),
		Accent:         lipgloss.Color("#9d7cd8"),
		Error:          lipgloss.Color("#e06c75"),
		Text:           lipgloss.Color("#eeeeee"),
		TextMuted:      lipgloss.Color("#808080"),
		BackgroundElem: lipgloss.Color("#1e1e1e"),
		Border:         lipgloss.Color("#484848"),
	}
}

// LightTheme returns a light theme for bright terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Primary:        lipgloss.Color("#b35c00"),
		Secondary:      lipgloss.Color("#0550ae"),
		Accent:         lipgloss.Color("#6639ba"),
		Error:          lipgloss.Color("#cf222e"),
		Text:           lipgloss.Color("#1f2328"),
		TextMuted:      lipgloss.Color("#656d76"),
		BackgroundElem: lipgloss.Color("#f6f8fa"),
		Border:         lipgloss.Color("#d0d7de"),
	}
}

// ThemeByName returns a theme by name. Defaults to dark.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DarkTheme()
	}
}

// styles holds all lipgloss styles derived from a Theme.
type styles struct {
	title    lipgloss.Style
	prompt   lipgloss.Style
	section  lipgloss.Style
	selected lipgloss.Style
	match    lipgloss.Style
	text     lipgloss.Style
	dim      lipgloss.Style
	err      lipgloss.Style

	hintKey  lipgloss.Style
	hintDesc lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		prompt:   lipgloss.NewStyle().Foreground(t.Primary),
		section:  lipgloss.NewStyle().Foreground(t.Border),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Background(t.BackgroundElem),
		match:    lipgloss.NewStyle().Underline(true).Foreground(t.Accent),
		text:     lipgloss.NewStyle().Foreground(t.Text),
		dim:      lipgloss.NewStyle().Foreground(t.TextMuted),
		err:      lipgloss.NewStyle().Foreground(t.Error),

		hintKey:  lipgloss.NewStyle().Foreground(t.Text),
		hintDesc: lipgloss.NewStyle().Foreground(t.TextMuted),
	}
}
