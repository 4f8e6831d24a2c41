package tui

import (
	"context"
	"net/http"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/apitest"
	"github.com/idilsaglam/tada/internal/model"
)

func setup(t *testing.T, seed ...model.Todo) (Model, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	srv.Seed(seed...)
	c, err := api.New(srv.URL())
	require.NoError(t, err)

	m := New(context.Background(), c, nil)
	m = drive(t, m, m.Init())
	require.True(t, m.State().Loaded())
	return m, srv
}

// drive runs cmd and feeds every message it produces back into the model
// until no command is left.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			var next tea.Cmd
			m, next = update(t, m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

// press sends each key and runs whatever it triggers.
func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range msgs {
		var cmd tea.Cmd
		m, cmd = update(t, m, k)
		m = drive(t, m, cmd)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	tm, cmd := m.Update(msg)
	out, ok := tm.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEscape}
)

// typeText sends s one rune at a time.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, runes(string(r)))
	}
	return m
}

func TestInitLoads(t *testing.T) {
	seed := []model.Todo{{ID: 1, Task: "Buy milk"}, {ID: 2, Task: "Walk dog", IsComplete: true}}
	m, srv := setup(t, seed...)

	assert.Equal(t, seed, m.State().Todos())
	assert.Len(t, m.list.Items(), 2)
	assert.Equal(t, 1, srv.CallCount(http.MethodGet))
	assert.Contains(t, m.View(), "Walk dog")
}

func TestAdd(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 6, Task: "old"})

	m, _ = update(t, m, runes("a"))
	require.Equal(t, modeAdd, m.mode)
	m = typeText(t, m, "Buy milk")
	m, cmd := update(t, m, enter)
	assert.Equal(t, modeBrowse, m.mode)
	m = drive(t, m, cmd)

	assert.Equal(t, []model.Todo{{ID: 6, Task: "old"}, {ID: 7, Task: "Buy milk"}}, m.State().Todos())
	assert.Equal(t, srv.Todos(), m.State().Todos())
	assert.Empty(t, m.State().Input())
	assert.Len(t, m.list.Items(), 2)
}

func TestAddBlankSendsNothing(t *testing.T) {
	m, srv := setup(t)

	m, _ = update(t, m, runes("a"))
	m = typeText(t, m, "   ")
	m, cmd := update(t, m, enter)

	assert.Nil(t, cmd)
	assert.Equal(t, modeAdd, m.mode)
	assert.NotEmpty(t, m.inputErr)
	assert.Zero(t, srv.CallCount(http.MethodPost))
}

func TestAddFailureRetainsInput(t *testing.T) {
	m, srv := setup(t)
	srv.Fail(http.MethodPost, http.StatusInternalServerError)

	m, _ = update(t, m, runes("a"))
	m = typeText(t, m, "Buy milk")
	m, cmd := update(t, m, enter)
	m = drive(t, m, cmd)

	assert.Empty(t, m.State().Todos())
	assert.Equal(t, "Buy milk", m.State().Input())

	m, _ = update(t, m, runes("a"))
	assert.Equal(t, "Buy milk", m.input.Value(), "reopening shows the retained text")
}

func TestEditUnchangedSendsNothing(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 1, Task: "a"})

	m, _ = update(t, m, runes("e"))
	require.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "a", m.input.Value())
	m, cmd := update(t, m, enter)

	assert.Nil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Zero(t, srv.CallCount(http.MethodPut))
}

func TestEditCommit(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 1, Task: "a", IsComplete: true})

	m, _ = update(t, m, runes("e"))
	m = typeText(t, m, "bc")
	m, cmd := update(t, m, enter)
	_, _, editing := m.State().Editing()
	assert.False(t, editing)
	m = drive(t, m, cmd)

	want := []model.Todo{{ID: 1, Task: "abc", IsComplete: true}}
	assert.Equal(t, want, m.State().Todos())
	assert.Equal(t, want, srv.Todos())
}

func TestEditCancel(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 1, Task: "a"})

	m, _ = update(t, m, runes("e"))
	m = typeText(t, m, "zzz")
	m, cmd := update(t, m, esc)

	assert.Nil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, []model.Todo{{ID: 1, Task: "a"}}, m.State().Todos())
	assert.Zero(t, srv.CallCount(http.MethodPut))
}

func TestToggle(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 3, Task: "c"})

	m, cmd := update(t, m, space)
	m = drive(t, m, cmd)

	got, _ := m.State().Todo(3)
	assert.True(t, got.IsComplete)
	assert.True(t, srv.Todos()[0].IsComplete)
}

func TestToggleFailure(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 3, Task: "c"})
	srv.Fail(http.MethodPut, http.StatusInternalServerError)

	m, cmd := update(t, m, space)
	m = drive(t, m, cmd)

	got, _ := m.State().Todo(3)
	assert.False(t, got.IsComplete)
}

func TestRapidToggles(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 3, Task: "c"})

	m, first := update(t, m, space)
	m, second := update(t, m, space)
	require.NotNil(t, first)
	assert.Nil(t, second, "second toggle waits for the first")

	m = drive(t, m, first)

	got, _ := m.State().Todo(3)
	assert.False(t, got.IsComplete)
	assert.False(t, srv.Todos()[0].IsComplete)
	assert.Equal(t, 2, srv.CallCount(http.MethodPut))
	assert.Zero(t, m.State().Pending())
}

func TestDelete(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 5, Task: "e"}, model.Todo{ID: 6, Task: "f"})

	m, cmd := update(t, m, runes("d"))
	m = drive(t, m, cmd)

	assert.Equal(t, []model.Todo{{ID: 6, Task: "f"}}, m.State().Todos())
	assert.Equal(t, []model.Todo{{ID: 6, Task: "f"}}, srv.Todos())
	assert.Len(t, m.list.Items(), 1)
}

func TestDeleteFailureKeepsItem(t *testing.T) {
	m, srv := setup(t, model.Todo{ID: 5, Task: "e"})
	srv.Fail(http.MethodDelete, http.StatusInternalServerError)

	m, cmd := update(t, m, runes("d"))
	m = drive(t, m, cmd)

	assert.Equal(t, []model.Todo{{ID: 5, Task: "e"}}, m.State().Todos())
}

func TestReload(t *testing.T) {
	m, srv := setup(t)
	srv.Seed(model.Todo{ID: 1, Task: "added elsewhere"})

	m, cmd := update(t, m, runes("r"))
	m = drive(t, m, cmd)

	assert.Equal(t, srv.Todos(), m.State().Todos())
}

func TestQuit(t *testing.T) {
	m, _ := setup(t)

	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestLoadFailureLeavesEmptyList(t *testing.T) {
	srv := apitest.New(t)
	srv.Fail(http.MethodGet, http.StatusInternalServerError)
	c, err := api.New(srv.URL())
	require.NoError(t, err)

	m := New(context.Background(), c, nil)
	m = drive(t, m, m.Init())

	assert.False(t, m.State().Loaded())
	assert.Empty(t, m.list.Items())
	assert.NotContains(t, m.View(), "error")
}

func TestFilteredListSurvivesResults(t *testing.T) {
	m, _ := setup(t, model.Todo{ID: 1, Task: "Buy milk"}, model.Todo{ID: 2, Task: "Walk dog"})

	m = press(t, m, runes("/"), runes("m"), runes("i"), runes("l"), runes("k"), enter)
	require.Equal(t, list.FilterApplied, m.list.FilterState())
	require.Len(t, m.list.VisibleItems(), 1)

	m = press(t, m, space)

	got, _ := m.State().Todo(1)
	require.True(t, got.IsComplete)
	require.Len(t, m.list.VisibleItems(), 1)
	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, int64(1), sel.ID)
	assert.True(t, sel.IsComplete)

	m = press(t, m, runes("r"))
	assert.Len(t, m.list.VisibleItems(), 1)
}

func TestEditClosesWhenItemDeleted(t *testing.T) {
	m, _ := setup(t, model.Todo{ID: 5, Task: "e"})

	m, del := update(t, m, runes("d"))
	require.NotNil(t, del)
	m, _ = update(t, m, runes("e"))
	require.Equal(t, modeEdit, m.mode)

	m = drive(t, m, del)

	_, _, editing := m.State().Editing()
	assert.False(t, editing)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.State().Todos())
}
