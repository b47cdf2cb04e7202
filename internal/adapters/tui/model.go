// Package tui renders install progress as an interactive terminal UI: the
// plan on the left, the selected recipe's phase output on the right.
package tui

import (
	"bytes"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	recipeListWidthRatio = 0.3
	logPaneBorderWidth   = 4
)

// RecipeStatus represents the current state of a recipe.
type RecipeStatus string

const (
	// StatusPending indicates the recipe is waiting its turn in the plan.
	StatusPending RecipeStatus = "Pending"
	// StatusRunning indicates one of the recipe's phases is executing.
	StatusRunning RecipeStatus = "Running"
	// StatusDone indicates the recipe completed successfully.
	StatusDone RecipeStatus = "Done"
	// StatusError indicates the recipe failed.
	StatusError RecipeStatus = "Error"
)

// RecipeNode is one row of the recipe list.
type RecipeNode struct {
	Name      string
	Status    RecipeStatus
	Phase     string
	Target    bool
	Logs      bytes.Buffer
	StartTime time.Time
	EndTime   time.Time

	rootSpan string
}

// Model represents the main TUI state.
type Model struct {
	Recipes     []*RecipeNode
	RecipeMap   map[string]*RecipeNode
	SpanMap     map[string]*RecipeNode
	Viewport    viewport.Model
	Spinner     spinner.Model
	ActiveName  string
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	FollowMode  bool
}

// NewModel creates a model that follows the running recipe.
func NewModel() *Model {
	return &Model{
		RecipeMap:  make(map[string]*RecipeNode),
		SpanMap:    make(map[string]*RecipeNode),
		Viewport:   viewport.New(0, 0),
		Spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(recipeRunningStyle)),
		FollowMode: true,
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // message dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		listWidth := int(float64(msg.Width) * recipeListWidthRatio)
		m.Viewport.Width = msg.Width - listWidth - logPaneBorderWidth
		m.Viewport.Height = msg.Height - lipgloss.Height(titleStyle.Render("LOGS"))
		m.ListHeight = msg.Height - lipgloss.Height(titleStyle.Render("RECIPES")+"\n\n")
		m.ensureVisible()
		m.refreshViewport()

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)

	case MsgInitRecipes:
		m.initRecipes(msg)

	case MsgSpanStart:
		m.spanStart(msg)

	case MsgSpanLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			node.Logs.Write(msg.Data)
			if node.Name == m.ActiveName {
				m.refreshViewport()
			}
		}

	case MsgSpanComplete:
		node, ok := m.SpanMap[msg.SpanID]
		if !ok || node.rootSpan != msg.SpanID {
			break
		}
		node.EndTime = msg.EndTime
		node.Phase = ""
		if msg.Err != nil {
			node.Status = StatusError
		} else {
			node.Status = StatusDone
		}
	}

	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Interrupt
	case "q":
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.showSelected()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Recipes)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.showSelected()
		}
	case "esc":
		m.FollowMode = true
		for i, r := range m.Recipes {
			if r.Status == StatusRunning {
				m.SelectedIdx = i
				break
			}
		}
		m.showSelected()
	case "pgup":
		m.Viewport.PageUp()
	case "pgdown":
		m.Viewport.PageDown()
	case "home":
		m.Viewport.GotoTop()
	case "end":
		m.Viewport.GotoBottom()
	}
	return nil
}

func (m *Model) initRecipes(msg MsgInitRecipes) {
	for _, name := range msg.Recipes {
		m.node(name)
	}
	for _, name := range msg.Targets {
		if node, ok := m.RecipeMap[name]; ok {
			node.Target = true
		}
	}
}

// node returns the row for name, appending one for recipes that were not in
// the plan, such as a removal.
func (m *Model) node(name string) *RecipeNode {
	if node, ok := m.RecipeMap[name]; ok {
		return node
	}
	node := &RecipeNode{Name: name, Status: StatusPending}
	m.Recipes = append(m.Recipes, node)
	m.RecipeMap[name] = node
	return node
}

func (m *Model) spanStart(msg MsgSpanStart) {
	recipe, phase, isPhase := strings.Cut(msg.Name, ":")
	node, ok := m.SpanMap[msg.ParentID]
	if !ok {
		node = m.node(recipe)
	}
	m.SpanMap[msg.SpanID] = node

	if isPhase {
		node.Phase = phase
		return
	}
	node.rootSpan = msg.SpanID
	node.Status = StatusRunning
	node.StartTime = msg.StartTime
	node.EndTime = time.Time{}

	if m.FollowMode {
		for i, r := range m.Recipes {
			if r == node {
				m.SelectedIdx = i
				break
			}
		}
		m.showSelected()
	}
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) showSelected() {
	m.ensureVisible()
	if m.SelectedIdx >= 0 && m.SelectedIdx < len(m.Recipes) {
		m.ActiveName = m.Recipes[m.SelectedIdx].Name
	}
	m.refreshViewport()
	if m.FollowMode {
		m.Viewport.GotoBottom()
	}
}

func (m *Model) refreshViewport() {
	node, ok := m.RecipeMap[m.ActiveName]
	if !ok {
		return
	}
	atBottom := m.Viewport.AtBottom()
	m.Viewport.SetContent(node.Logs.String())
	if m.FollowMode || atBottom {
		m.Viewport.GotoBottom()
	}
}
