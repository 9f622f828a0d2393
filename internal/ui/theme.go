package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Done, Selected, Help                          lipgloss.Style
	High, Medium, Low                             lipgloss.Style
	Border                                        lipgloss.Style

	BoxUnchecked, BoxChecked string
	MarkOn, MarkOff          string
	SymDone, SymPending      string
}

func newTheme(name string, fg, muted, accent, success, pending, errc, border, high, medium, low lipgloss.Color) Theme {
	base := lipgloss.NewStyle().Foreground(fg)
	return Theme{
		Name:     name,
		Title:    base.Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Accent:   lipgloss.NewStyle().Foreground(accent),
		Success:  lipgloss.NewStyle().Foreground(success),
		Error:    lipgloss.NewStyle().Foreground(errc).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(pending),
		Done:     lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		Selected: base.Bold(true).Reverse(true),
		Help:     lipgloss.NewStyle().Foreground(muted).Faint(true),
		High:     lipgloss.NewStyle().Foreground(high).Bold(true),
		Medium:   lipgloss.NewStyle().Foreground(medium),
		Low:      lipgloss.NewStyle().Foreground(low),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),

		BoxUnchecked: "☐", BoxChecked: "☑",
		MarkOn: "●", MarkOff: "○",
		SymDone: "✔", SymPending: "•",
	}
}

var (
	light = newTheme("light", "0", "8", "12", "28", "214", "9", "8", "160", "172", "25")
	dark  = newTheme("dark", "255", "245", "111", "42", "221", "203", "240", "203", "221", "117")

	current = light
)

// SetDark switches between the light and dark themes.
func SetDark(on bool) {
	if on {
		current = dark
	} else {
		current = light
	}
}

// Dark reports whether the dark theme is active.
func Dark() bool { return current.Name == dark.Name }

// Expose what renderers need
func Current() Theme { return current }
