package tui

import (
	"github.com/charmbracelet/lipgloss"

	"tokenscope/internal/dashboard"
	"tokenscope/internal/token"
)

// Styles.
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeColStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	skeletonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	nameStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	symbolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	initialStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	priceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	emptyStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))

	filterStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	filterActiveStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))

	flashUpBG   = lipgloss.Color("22") // dark green
	flashDownBG = lipgloss.Color("52") // dark red
	highlightBG = lipgloss.Color("236")

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 2)
	popoverStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func badgeStyle(c token.Category) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("0"))
	switch c {
	case token.CategoryNew:
		return s.Background(lipgloss.Color("10"))
	case token.CategoryLateStage:
		return s.Background(lipgloss.Color("11"))
	case token.CategoryGraduated:
		return s.Background(lipgloss.Color("13"))
	default:
		return s
	}
}

// changeStyle colours a value green when non-negative, red otherwise.
func changeStyle(v float64) lipgloss.Style {
	if v >= 0 {
		return gainStyle
	}
	return lossStyle
}

// flashStyle returns a copy of s with the flash background applied.
func flashStyle(s lipgloss.Style, mv dashboard.Move) lipgloss.Style {
	switch mv {
	case dashboard.MoveUp:
		return s.Background(flashUpBG)
	case dashboard.MoveDown:
		return s.Background(flashDownBG)
	default:
		return s
	}
}

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}
