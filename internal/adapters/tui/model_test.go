package tui_test

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hob/internal/adapters/tui"
)

func update(t *testing.T, m *tui.Model, msg tea.Msg) (*tui.Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(*tui.Model)
	require.True(t, ok)
	return updated, cmd
}

func TestModel_InitRecipes(t *testing.T) {
	m := tui.NewModel()
	m, _ = update(t, m, tui.MsgInitRecipes{
		Recipes: []string{"zlib", "openssl", "curl"},
		Targets: []string{"curl"},
	})

	require.Len(t, m.Recipes, 3)
	assert.Equal(t, "zlib", m.Recipes[0].Name)
	assert.Equal(t, tui.StatusPending, m.Recipes[0].Status)
	assert.False(t, m.RecipeMap["zlib"].Target)
	assert.True(t, m.RecipeMap["curl"].Target)
}

func TestModel_SpanLifecycle(t *testing.T) {
	m := tui.NewModel()
	m, _ = update(t, m, tui.MsgInitRecipes{Recipes: []string{"zlib", "curl"}, Targets: []string{"curl"}})

	start := time.Now()
	m, _ = update(t, m, tui.MsgSpanStart{SpanID: "s1", Name: "zlib", StartTime: start})
	zlib := m.RecipeMap["zlib"]
	assert.Equal(t, tui.StatusRunning, zlib.Status)
	assert.Equal(t, "zlib", m.ActiveName, "follow mode selects the running recipe")

	m, _ = update(t, m, tui.MsgSpanStart{SpanID: "s2", ParentID: "s1", Name: "zlib:build"})
	assert.Equal(t, "build", zlib.Phase)

	m, _ = update(t, m, tui.MsgSpanLog{SpanID: "s2", Data: []byte("compiling\n")})
	assert.Equal(t, "compiling\n", zlib.Logs.String())

	m, _ = update(t, m, tui.MsgSpanComplete{SpanID: "s2", EndTime: start})
	assert.Equal(t, tui.StatusRunning, zlib.Status, "a phase ending does not finish the recipe")

	end := start.Add(time.Second)
	m, _ = update(t, m, tui.MsgSpanComplete{SpanID: "s1", EndTime: end})
	assert.Equal(t, tui.StatusDone, zlib.Status)
	assert.Equal(t, end, zlib.EndTime)
	assert.Empty(t, zlib.Phase)

	m, _ = update(t, m, tui.MsgSpanStart{SpanID: "s3", Name: "curl", StartTime: end})
	m, _ = update(t, m, tui.MsgSpanComplete{SpanID: "s3", EndTime: end, Err: errors.New("boom")})
	assert.Equal(t, tui.StatusError, m.RecipeMap["curl"].Status)
	assert.Equal(t, 1, m.SelectedIdx)
}

func TestModel_PhaseWithoutParent(t *testing.T) {
	m := tui.NewModel()
	m, _ = update(t, m, tui.MsgSpanStart{SpanID: "p", Name: "ripgrep:uninstall"})

	require.Len(t, m.Recipes, 1, "unknown recipes are appended")
	assert.Equal(t, "ripgrep", m.Recipes[0].Name)
	assert.Equal(t, "uninstall", m.Recipes[0].Phase)
	assert.Equal(t, tui.StatusPending, m.Recipes[0].Status)

	m, _ = update(t, m, tui.MsgSpanLog{SpanID: "p", Data: []byte("rm bin/rg\n")})
	assert.Equal(t, "rm bin/rg\n", m.Recipes[0].Logs.String())
}

func TestModel_UnknownSpansIgnored(t *testing.T) {
	m := tui.NewModel()
	m, _ = update(t, m, tui.MsgSpanLog{SpanID: "nope", Data: []byte("x")})
	m, _ = update(t, m, tui.MsgSpanComplete{SpanID: "nope"})
	assert.Empty(t, m.Recipes)
}

func TestModel_Keys(t *testing.T) {
	m := tui.NewModel()
	m, _ = update(t, m, tui.MsgInitRecipes{Recipes: []string{"a", "b", "c"}})
	m, _ = update(t, m, tui.MsgSpanStart{SpanID: "s", Name: "a"})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, m.SelectedIdx)
	assert.Equal(t, "b", m.ActiveName)
	assert.False(t, m.FollowMode)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.SelectedIdx, "selection stops at the last recipe")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.FollowMode)
	assert.Equal(t, 0, m.SelectedIdx, "esc jumps back to the running recipe")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.SelectedIdx)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.InterruptMsg{}, cmd())
}

func TestModel_SlidingWindow(t *testing.T) {
	m := tui.NewModel()
	names := []string{"r0", "r1", "r2", "r3", "r4", "r5"}
	m, _ = update(t, m, tui.MsgInitRecipes{Recipes: names})
	m.ListHeight = 3

	for range 4 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 4, m.SelectedIdx)
	assert.Equal(t, 2, m.ListOffset)

	for range 3 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	assert.Equal(t, 1, m.SelectedIdx)
	assert.Equal(t, 1, m.ListOffset)
}

func TestModel_WindowSize(t *testing.T) {
	m := tui.NewModel()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, 100-30-4, m.Viewport.Width)
	assert.Positive(t, m.Viewport.Height)
	assert.Positive(t, m.ListHeight)
	assert.Less(t, m.ListHeight, 40)
}
