// Package tui is the interactive todo list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
	"github.com/idilsaglam/tada/internal/view"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
)

// resultMsg carries a finished request back to Update.
type resultMsg struct {
	res view.Result
}

// listItem adapts a Todo to bubbles/list.Item.
type listItem struct {
	todo    model.Todo
	editing bool
}

func (i listItem) Title() string       { return i.todo.Task }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Task }

// itemDelegate renders one todo per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	line := ui.Box(it.todo) + " " + ui.Task(it.todo)
	if it.editing {
		line += " " + t.Accent.Render("(editing)")
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+line)
}

var keys = struct {
	add, edit, toggle, remove, reload key.Binding
}{
	add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
}

// Model is the bubbletea model wrapping a view.View.
type Model struct {
	ctx    context.Context
	remote view.Remote
	view   *view.View
	logger *log.Logger

	list  list.Model
	input textinput.Model
	mode  mode

	inputErr string
	width    int
	height   int
}

// New builds the model. Requests run against remote under ctx.
func New(ctx context.Context, remote view.Remote, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.FilterInput.Cursor.SetMode(cursor.CursorStatic)
	l.SetStatusBarItemName("item", "items")
	extra := func() []key.Binding {
		return []key.Binding{keys.add, keys.edit, keys.toggle, keys.remove, keys.reload}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = model.MaxTaskLen
	ti.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:    ctx,
		remote: remote,
		view:   view.New(logger),
		logger: logger,
		list:   l,
		input:  ti,
		width:  80,
		height: 24,
	}
	m.layout()
	m.refresh()
	return m
}

// Run starts the interactive list on the terminal. Outstanding requests are
// canceled when it returns.
func Run(ctx context.Context, remote view.Remote, logger *log.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, remote, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// State returns the view the model renders.
func (m Model) State() *view.View { return m.view }

func (m Model) Init() tea.Cmd {
	return m.send(m.view.Activate())
}

// send turns requests into commands whose results come back as resultMsg.
func (m Model) send(reqs []view.Request) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(reqs))
	for _, req := range reqs {
		cmds = append(cmds, func() tea.Msg {
			return resultMsg{res: view.Execute(m.ctx, m.remote, req)}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		next := m.view.Resolve(msg.res)
		if _, _, editing := m.view.Editing(); !editing && m.mode == modeEdit {
			m.closeInput()
		}
		cmd := m.refresh()
		return m, tea.Batch(cmd, m.send(next))
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	}

	switch m.mode {
	case modeAdd:
		return m.updateAdd(msg)
	case modeEdit:
		return m.updateEdit(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			m.view.SetInput(m.input.Value())
			if strings.TrimSpace(m.input.Value()) == "" {
				m.inputErr = "Task cannot be empty"
				return m, nil
			}
			reqs := m.view.Submit()
			m.closeInput()
			return m, m.send(reqs)
		case "esc":
			// The typed text stays in the view, like an unfocused form field.
			m.view.SetInput(m.input.Value())
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.inputErr = ""
	return m, cmd
}

func (m Model) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			m.view.SetDraft(m.input.Value())
			reqs := m.view.CommitEdit()
			m.closeInput()
			cmd := m.refresh()
			return m, tea.Batch(cmd, m.send(reqs))
		case "esc":
			m.view.CancelEdit()
			m.closeInput()
			cmd := m.refresh()
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.view.SetDraft(m.input.Value())
	return m, cmd
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, isKey := msg.(tea.KeyMsg)
	if !isKey || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch k.String() {
	case "esc":
		if m.list.FilterState() == list.FilterApplied {
			break
		}
		return m, tea.Quit
	case "q":
		return m, tea.Quit
	case " ":
		if t, ok := m.selected(); ok {
			return m, m.send(m.view.Toggle(t.ID))
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.send(m.view.Delete(t.ID))
		}
		return m, nil
	case "r":
		return m, m.send(m.view.Activate())
	case "a":
		m.openInput(modeAdd, m.view.Input(), "New task...")
		return m, nil
	case "e":
		t, ok := m.selected()
		if !ok || !m.view.StartEdit(t.ID) {
			return m, nil
		}
		_, draft, _ := m.view.Editing()
		m.openInput(modeEdit, draft, "Edit task...")
		cmd := m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) openInput(md mode, value, placeholder string) {
	m.mode = md
	m.inputErr = ""
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.layout()
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
	m.layout()
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

// refresh copies the cache into the list, keeping the cursor in range. The
// returned command refilters the list when a filter is active.
func (m *Model) refresh() tea.Cmd {
	todos := m.view.Todos()
	editID, _, editing := m.view.Editing()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, listItem{todo: t, editing: editing && t.ID == editID})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	m.list.Title = m.title(todos)
	return cmd
}

func (m Model) title(todos []model.Todo) string {
	h := ui.Header(todos)
	switch {
	case !m.view.Loaded() && m.view.Pending() > 0:
		h += "  " + ui.Current().Muted.Render("loading...")
	case m.view.Pending() > 0:
		h += "  " + ui.Current().Muted.Render("syncing...")
	}
	return h
}

func (m *Model) layout() {
	h := m.height - 4
	if m.mode != modeBrowse {
		h -= 4
	}
	m.list.SetSize(max(m.width-4, 10), max(h, 3))
	m.input.Width = max(m.width-12, 10)
}

func (m Model) View() string {
	content := m.list.View()
	if m.mode != modeBrowse {
		title := "Add new task"
		if m.mode == modeEdit {
			title = "Edit task"
		}
		if m.inputErr != "" {
			title += " - " + ui.Current().Error.Render(m.inputErr)
		}
		bar := lipgloss.NewStyle().
			Border(ui.Current().Border).
			BorderForeground(ui.Current().BorderColor).
			Padding(0, 1)
		content += "\n" + bar.Render(title+"\n"+m.input.View())
	}
	return ui.Frame([]string{content})
}
