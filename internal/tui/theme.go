package tui

import "github.com/charmbracelet/lipgloss"

var (
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	DirectionCallStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	DirectionPutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	TrendBullishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	TrendBearishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	TrendNeutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	QualityGoodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	QualityOkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	QualityBadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)
