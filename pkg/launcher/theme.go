package launcher

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the launcher.
type Theme struct {
	Title    lipgloss.Style
	Favorite lipgloss.Style
	Tags     lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Confirm  lipgloss.Style
	Help     lipgloss.Style
}

// DefaultTheme returns the built-in launcher theme.
func DefaultTheme() Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Favorite: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Tags:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Confirm:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}
