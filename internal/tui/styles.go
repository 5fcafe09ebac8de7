package tui

import (
	"prompt-manager/internal/notification"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorText    = lipgloss.Color("#e0def4")
	colorSubtext = lipgloss.Color("#908caa")
	colorOverlay = lipgloss.Color("#6e6a86")
	colorAccent  = lipgloss.Color("#c4a7e7")
	colorGreen   = lipgloss.Color("#9ccfd8")
	colorYellow  = lipgloss.Color("#f6c177")
	colorRed     = lipgloss.Color("#eb6f92")
	colorBlue    = lipgloss.Color("#31748f")
)

var (
	appStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorOverlay).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Width(14)

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			PaddingLeft(14)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true).
				PaddingLeft(1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderLeft(true).
				BorderForeground(colorAccent)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	activeTagStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	tagCursorStyle = lipgloss.NewStyle().
			Underline(true)

	favoriteStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	confirmStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	statNumberStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen).
			Width(8).
			Align(lipgloss.Right)
)

func notificationStyle(t notification.Type) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)
	switch t {
	case notification.TypeSuccess:
		return base.Foreground(colorGreen)
	case notification.TypeError:
		return base.Foreground(colorRed).Bold(true)
	case notification.TypeWarning:
		return base.Foreground(colorYellow)
	default:
		return base.Foreground(colorAccent)
	}
}
