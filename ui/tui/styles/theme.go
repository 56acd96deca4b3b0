package styles

import "github.com/charmbracelet/lipgloss"

var (
	Subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	Special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	Danger    = lipgloss.AdaptiveColor{Light: "#D94F4F", Dark: "#FF5F5F"}
	Warning   = lipgloss.AdaptiveColor{Light: "#C98A1B", Dark: "#E5A50A"}

	TitleStyle = lipgloss.NewStyle().
			MarginLeft(1).
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#FFF7DB"))

	TabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("#888"))

	ActiveTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(Highlight)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Highlight).
			Padding(0, 1)

	SelectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFF")).
				Background(Highlight)

	StaleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777")).
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFF"))

	StatusErrStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Danger)

	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666"))
)
