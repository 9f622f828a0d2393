// Package tui is the interactive Bubble Tea front end over a todos.Store.
package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/search"
	"github.com/Makepad-fr/tada/internal/todos"
	"github.com/Makepad-fr/tada/internal/ui"
)

// listItem adapts model.Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) Title() string       { return i.todo.Text }
func (i listItem) Description() string { return i.todo.Description }
func (i listItem) FilterValue() string { return i.todo.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = ui.Current().Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+ui.TodoLine(it.todo))
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeSearch
)

// add form fields, in tab order
const (
	fieldText = iota
	fieldDescription
	fieldPriority
	fieldDueDate
	fieldCount
)

// searchMsg carries a settled search term from the debouncer.
type searchMsg struct{ term string }

type keyMap struct {
	Add, Toggle, Select, Delete key.Binding
	BulkComplete, BulkDelete    key.Binding
	SortPriority, SortDue       key.Binding
	Filter, Search, Dark, Quit  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Toggle:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
		Select:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "select")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		BulkComplete: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "complete selected")),
		BulkDelete:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
		SortPriority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "sort priority")),
		SortDue:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "sort due")),
		Filter:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Dark:         key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "dark mode")),
		Quit:         key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Select, k.Delete, k.Search, k.Filter, k.Dark}
}

func (k keyMap) full() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Select, k.Delete, k.BulkComplete, k.BulkDelete,
		k.SortPriority, k.SortDue, k.Filter, k.Search, k.Dark}
}

// Options configure the TUI.
type Options struct {
	Debounce  time.Duration
	Scheduler search.Scheduler // nil uses the wall clock
	Logger    *log.Logger
}

// Model is the Bubble Tea model. It is only mutated from the event loop.
type Model struct {
	store  *todos.Store
	logger *log.Logger
	keys   keyMap
	list   list.Model

	mode    mode
	draft   model.Draft
	inputs  [fieldCount]textinput.Model
	focus   int
	formErr string

	searchInput textinput.Model
	debouncer   *search.Debouncer
	searchCh    chan string

	width, height int
}

// New builds the model over store.
func New(store *todos.Store, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	keys := defaultKeys()

	l := list.New(nil, itemDelegate{}, 76, 16)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowTitle(false)
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = keys.short
	l.AdditionalFullHelpKeys = keys.full

	m := Model{
		store:    store,
		logger:   opts.Logger,
		keys:     keys,
		list:     l,
		searchCh: make(chan string, 1),
		width:    80,
		height:   24,
	}
	m.draft.Reset()

	placeholders := [fieldCount]string{
		fieldText:        "What needs doing?",
		fieldDescription: "Details (optional)",
		fieldDueDate:     "Due date, YYYY-MM-DD (optional)",
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		m.inputs[i] = ti
	}

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "/ "
	m.searchInput.Placeholder = "search todos..."
	m.searchInput.CharLimit = 100

	var dopts []search.Option
	if opts.Scheduler != nil {
		dopts = append(dopts, search.WithScheduler(opts.Scheduler))
	}
	ch := m.searchCh
	m.debouncer = search.NewDebouncer(opts.Debounce, func(term string) { ch <- term }, dopts...)

	m.refresh()
	m.resize()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(store *todos.Store, opts Options) error {
	m := New(store, opts)
	defer m.debouncer.Stop()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func waitForSearch(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return searchMsg{term: <-ch}
	}
}

// refresh reloads list items from the store's filtered view.
func (m *Model) refresh() {
	view := m.store.FilteredView()
	items := make([]list.Item, 0, len(view))
	for _, td := range view {
		items = append(items, listItem{todo: td})
	}
	m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

func (m Model) current() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m Model) Init() tea.Cmd { return waitForSearch(m.searchCh) }

// Update handles msg, then fits the list to the terminal and the open box.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	nm := next.(Model)
	nm.resize()
	return nm, cmd
}

// resize sizes the list to what View leaves for it, so pagination in
// Update matches the rendered page.
func (m *Model) resize() {
	m.list.SetSize(max(m.width-4, 10), max(m.height-8-lineCount(m.box()), 3))
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case searchMsg:
		m.store.ApplySearch(msg.term)
		m.logger.Debug("search applied", "term", msg.term, "mode", m.store.SearchMode())
		m.refresh()
		return m, waitForSearch(m.searchCh)
	}

	switch m.mode {
	case modeAdd:
		return m.updateAdd(msg)
	case modeSearch:
		return m.updateSearch(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(km, m.keys.Add):
		m.mode = modeAdd
		m.formErr = ""
		m.focus = fieldText
		return m, m.focusField()
	case key.Matches(km, m.keys.Search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.store.SearchTerm())
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()
	case key.Matches(km, m.keys.Toggle):
		if td, ok := m.current(); ok {
			m.store.Toggle(td.ID)
			m.refresh()
		}
		return m, nil
	case key.Matches(km, m.keys.Select):
		if td, ok := m.current(); ok {
			m.store.ToggleSelected(td.ID)
			m.refresh()
		}
		return m, nil
	case key.Matches(km, m.keys.Delete):
		if td, ok := m.current(); ok {
			m.store.Delete(td.ID)
			m.refresh()
		}
		return m, nil
	case key.Matches(km, m.keys.BulkComplete):
		m.store.BulkComplete()
		m.refresh()
		return m, nil
	case key.Matches(km, m.keys.BulkDelete):
		m.store.BulkDelete()
		m.refresh()
		return m, nil
	case key.Matches(km, m.keys.SortPriority):
		_ = m.store.SortBy(model.SortByPriority)
		m.refresh()
		return m, nil
	case key.Matches(km, m.keys.SortDue):
		_ = m.store.SortBy(model.SortByDueDate)
		m.refresh()
		return m, nil
	case key.Matches(km, m.keys.Filter):
		m.store.SetFilter(m.store.Filter().Next())
		m.refresh()
		return m, nil
	case key.Matches(km, m.keys.Dark):
		ui.SetDark(!ui.Dark())
		m.list.Styles.HelpStyle = ui.Current().Help
		m.list.Styles.PaginationStyle = ui.Current().Help
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) focusField() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus && i != fieldPriority {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) resetForm() {
	m.draft.Reset()
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldText
	m.formErr = ""
}

func (m Model) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.resetForm()
			m.mode = modeBrowse
			return m, nil
		case "tab", "down":
			m.focus = (m.focus + 1) % fieldCount
			return m, m.focusField()
		case "shift+tab", "up":
			m.focus = (m.focus + fieldCount - 1) % fieldCount
			return m, m.focusField()
		case "enter":
			m.draft.Text = m.inputs[fieldText].Value()
			m.draft.Description = m.inputs[fieldDescription].Value()
			m.draft.DueDate = strings.TrimSpace(m.inputs[fieldDueDate].Value())
			if !m.store.AddDraft(&m.draft) {
				m.formErr = "Title cannot be empty"
				return m, nil
			}
			m.resetForm()
			m.mode = modeBrowse
			m.refresh()
			return m, nil
		}
		if m.focus == fieldPriority {
			switch km.String() {
			case " ", "right", "l":
				m.draft.Priority = m.draft.Priority.Next()
			case "left", "h":
				m.draft.Priority = m.draft.Priority.Next().Next()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.debouncer.Stop()
			m.searchInput.Blur()
			m.mode = modeBrowse
			return m, nil
		case "enter":
			m.debouncer.Flush()
			m.searchInput.Blur()
			m.mode = modeBrowse
			return m, nil
		}
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if v := m.searchInput.Value(); v != before {
		m.debouncer.Push(v)
	}
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	done, pending := m.store.Stats()

	var b strings.Builder
	b.WriteString(ui.Header(done, pending))
	b.WriteString("\n")
	b.WriteString(t.Muted.Render(ui.ProgressBar(done, done+pending, 28)))
	b.WriteString("\n")

	status := "filter: " + string(m.store.Filter())
	if term := m.store.SearchTerm(); term != "" {
		status += "  search: " + term
	}
	b.WriteString(t.Muted.Render(status))
	b.WriteString("\n\n")

	box := m.box()
	if len(m.list.Items()) == 0 {
		b.WriteString(t.Muted.Render("no todos"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
	}
	if box != "" {
		b.WriteString("\n")
		b.WriteString(box)
	}
	if err := m.store.PersistErr(); err != nil {
		b.WriteString("\n")
		b.WriteString(t.Error.Render("not saved: " + err.Error()))
	}
	return t.Border.Render(b.String())
}

// box is the add form or search input below the list, if one is open.
func (m Model) box() string {
	switch m.mode {
	case modeAdd:
		return m.formView()
	case modeSearch:
		return ui.Current().Border.Render("Search\n" + m.searchInput.View())
	}
	return ""
}

func (m Model) formView() string {
	t := ui.Current()
	title := "Add new todo"
	if m.formErr != "" {
		title += " - " + t.Error.Render(m.formErr)
	}
	labels := [fieldCount]string{"Title", "Description", "Priority", "Due"}
	lines := []string{title}
	for i := 0; i < fieldCount; i++ {
		label := t.Muted.Render(fmt.Sprintf("%-12s", labels[i]))
		if i == m.focus {
			label = t.Accent.Render(fmt.Sprintf("%-12s", labels[i]))
		}
		value := m.inputs[i].View()
		if i == fieldPriority {
			value = "< " + ui.PriorityTag(m.draft.Priority) + " >"
		}
		lines = append(lines, label+value)
	}
	lines = append(lines, t.Help.Render("tab next field  space cycle priority  enter save  esc cancel"))
	return t.Border.Render(strings.Join(lines, "\n"))
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
