package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/hob/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.recipeList(),
		m.logPane(),
	)
}

func (m *Model) recipeList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("RECIPES") + "\n\n")

	start := m.ListOffset
	end := min(m.ListOffset+m.ListHeight, len(m.Recipes))
	start = min(start, end)

	for i := start; i < end; i++ {
		s.WriteString(m.renderRow(i, m.Recipes[i]) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderRow(index int, node *RecipeNode) string {
	rowStyle := statusStyle(node.Status)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if node.Status == StatusPending || node.Status == StatusRunning {
			rowStyle = selectedStyle
		}
	}

	row := m.icon(node) + " " + rowStyle.Render(node.Name)
	switch {
	case node.Status == StatusRunning && node.Phase != "":
		row += phaseStyle.Render(" " + node.Phase)
	case !node.EndTime.IsZero():
		row += phaseStyle.Render(" " + node.EndTime.Sub(node.StartTime).Round(100*time.Millisecond).String())
	}
	return cursor + row
}

func (m *Model) icon(node *RecipeNode) string {
	switch node.Status {
	case StatusRunning:
		return m.Spinner.View()
	case StatusDone:
		return recipeDoneStyle.Render(style.Check)
	case StatusError:
		return recipeErrorStyle.Render(style.Cross)
	default:
		return recipePendingStyle.Render(style.Circle)
	}
}

func statusStyle(status RecipeStatus) lipgloss.Style {
	switch status {
	case StatusRunning:
		return recipeRunningStyle
	case StatusDone:
		return recipeDoneStyle
	case StatusError:
		return recipeErrorStyle
	default:
		return recipePendingStyle
	}
}

func (m *Model) logPane() string {
	header := titleStyle.Render("LOGS (Waiting...)")
	if node, ok := m.RecipeMap[m.ActiveName]; ok {
		mode := " (Following)"
		if !m.FollowMode {
			mode = " (Manual)"
		}
		title := titleStyle
		if node.Status == StatusError {
			title = failureTitleStyle
		}
		header = title.Render("LOGS: " + node.Name + mode)
	}

	return logStyle.Render(
		lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			m.Viewport.View(),
		),
	)
}
