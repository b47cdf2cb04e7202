package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/hob/internal/ui/style"
)

var (
	recipePendingStyle = lipgloss.NewStyle().
				Foreground(style.Slate)

	recipeRunningStyle = lipgloss.NewStyle().
				Foreground(style.Iris).
				Bold(true)

	recipeDoneStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	recipeErrorStyle = lipgloss.NewStyle().
				Foreground(style.Red)

	phaseStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			Faint(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Iris).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Iris).
			Foreground(style.White)

	failureTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(style.Red).
				Foreground(style.White)

	listStyle = lipgloss.NewStyle().
			MarginRight(2)

	logStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(style.Slate)
)
