package tui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/search"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/todos"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newModel(t *testing.T, seed []model.Todo, mode config.SearchMode) (Model, *todos.Store) {
	t.Helper()
	kv := jsonstore.NewMemory()
	if seed != nil {
		b, err := json.Marshal(seed)
		if err != nil {
			t.Fatal(err)
		}
		_ = kv.Set(todos.StorageKey, string(b))
	}
	store := todos.New(kv, todos.Options{SearchMode: mode})
	return New(store, Options{Debounce: time.Hour, Scheduler: holdScheduler{}}), store
}

// holdScheduler parks callbacks forever so only Flush emits.
type holdScheduler struct{}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (holdScheduler) AfterFunc(time.Duration, func()) search.Timer { return noopTimer{} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, runes(string(r)))
	}
	return m
}

func seed() []model.Todo {
	return []model.Todo{
		{ID: 1, Text: "low task", Priority: model.PriorityLow, DueDate: "2024-05-01"},
		{ID: 2, Text: "buy milk", Priority: model.PriorityHigh},
		{ID: 3, Text: "file taxes", Priority: model.PriorityMedium, Completed: true},
	}
}

func TestAddForm(t *testing.T) {
	m, store := newModel(t, nil, config.SearchDestructive)

	m = send(m, runes("a"))
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want add", m.mode)
	}
	m = typeText(m, "write report")
	m = send(m, tab)
	m = typeText(m, "q3 numbers")
	m = send(m, tab, space, space) // low -> medium -> high
	m = send(m, tab)
	m = typeText(m, "2024-09-30")
	m = send(m, enter)

	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse after save", m.mode)
	}
	got := store.Todos()
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	td := got[0]
	if td.Text != "write report" || td.Description != "q3 numbers" || td.Priority != model.PriorityHigh || td.DueDate != "2024-09-30" {
		t.Errorf("added %+v", td)
	}
	for i := range m.inputs {
		if v := m.inputs[i].Value(); v != "" {
			t.Errorf("input %d not reset: %q", i, v)
		}
	}
	if m.draft.Priority != model.PriorityLow {
		t.Errorf("draft priority not reset: %q", m.draft.Priority)
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list has %d items, want 1", len(m.list.Items()))
	}
}

func TestAddFormRejectsBlankTitle(t *testing.T) {
	m, store := newModel(t, nil, config.SearchDestructive)

	m = send(m, runes("a"))
	m = typeText(m, "   ")
	m = send(m, enter)

	if m.mode != modeAdd {
		t.Error("form should stay open")
	}
	if m.formErr == "" {
		t.Error("expected a validation message")
	}
	if len(store.Todos()) != 0 {
		t.Error("blank todo added")
	}

	m = send(m, esc)
	if m.mode != modeBrowse || m.formErr != "" {
		t.Errorf("esc should close and clear the form, mode=%v err=%q", m.mode, m.formErr)
	}
}

func TestBrowseKeys(t *testing.T) {
	m, store := newModel(t, seed(), config.SearchDestructive)

	// Cursor starts on todo 1.
	m = send(m, space)
	if !store.Todos()[0].Completed {
		t.Error("space should toggle the todo under the cursor")
	}

	m = send(m, runes("x"), down, runes("x"))
	sel := 0
	for _, td := range store.Todos() {
		if td.Selected {
			sel++
		}
	}
	if sel != 2 {
		t.Fatalf("selected %d todos, want 2", sel)
	}

	m = send(m, runes("C"))
	for _, td := range store.Todos()[:2] {
		if !td.Completed {
			t.Errorf("todo %d not completed by bulk complete", td.ID)
		}
	}

	m = send(m, runes("D"))
	if got := store.Todos(); len(got) != 1 || got[0].ID != 3 {
		t.Errorf("after bulk delete: %+v", got)
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list has %d items, want 1", len(m.list.Items()))
	}

	m = send(m, runes("d"))
	if len(store.Todos()) != 0 {
		t.Error("d should delete the todo under the cursor")
	}
	// Deleting on an empty list is harmless.
	send(m, runes("d"), space, runes("x"))
}

func TestSortKeys(t *testing.T) {
	m, store := newModel(t, seed(), config.SearchDestructive)

	m = send(m, runes("p"))
	if got := store.Todos(); got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Errorf("priority order = %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}

	send(m, runes("u"))
	// Todos without a due date sort first, in their current order.
	if got := store.Todos(); got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Errorf("due order = %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestFilterKeyCycles(t *testing.T) {
	m, store := newModel(t, seed(), config.SearchDestructive)

	m = send(m, runes("f"))
	if store.Filter() != model.FilterPending || len(m.list.Items()) != 2 {
		t.Errorf("filter=%q items=%d", store.Filter(), len(m.list.Items()))
	}
	m = send(m, runes("f"))
	if store.Filter() != model.FilterCompleted || len(m.list.Items()) != 1 {
		t.Errorf("filter=%q items=%d", store.Filter(), len(m.list.Items()))
	}
	m = send(m, runes("f"))
	if store.Filter() != model.FilterAll || len(m.list.Items()) != 3 {
		t.Errorf("filter=%q items=%d", store.Filter(), len(m.list.Items()))
	}
	if len(store.Todos()) != 3 {
		t.Error("filtering changed the stored list")
	}
}

func TestSearchIsDebounced(t *testing.T) {
	m, store := newModel(t, seed(), config.SearchDestructive)

	m = send(m, runes("/"))
	if m.mode != modeSearch {
		t.Fatalf("mode = %v, want search", m.mode)
	}
	m = typeText(m, "lo")

	if term, ok := m.debouncer.Pending(); !ok || term != "lo" {
		t.Fatalf("Pending() = %q, %v", term, ok)
	}
	if len(store.Todos()) != 3 {
		t.Fatal("search applied before the debouncer settled")
	}

	// Enter settles the debouncer; the term arrives as a message.
	m = send(m, enter)
	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse", m.mode)
	}
	msg := waitForSearch(m.searchCh)()
	if sm, ok := msg.(searchMsg); !ok || sm.term != "lo" {
		t.Fatalf("message = %#v", msg)
	}
	m = send(m, msg)

	if got := store.Todos(); len(got) != 1 || got[0].Text != "low task" {
		t.Errorf("stored list after search = %+v", got)
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list has %d items, want 1", len(m.list.Items()))
	}
}

func TestSearchViewMode(t *testing.T) {
	m, store := newModel(t, seed(), config.SearchView)

	m = send(m, searchMsg{term: "MILK"})
	if len(store.Todos()) != 3 {
		t.Error("view search changed the stored list")
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list has %d items, want 1", len(m.list.Items()))
	}
}

func TestSearchEscDiscardsPendingTerm(t *testing.T) {
	m, _ := newModel(t, seed(), config.SearchDestructive)

	m = send(m, runes("/"))
	m = typeText(m, "zz")
	m = send(m, esc)
	if _, ok := m.debouncer.Pending(); ok {
		t.Error("esc should drop the pending search")
	}
	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse", m.mode)
	}
}

func TestDarkModeToggle(t *testing.T) {
	t.Cleanup(func() { ui.SetDark(false) })
	m, _ := newModel(t, nil, config.SearchDestructive)

	m = send(m, runes("t"))
	if !ui.Dark() {
		t.Error("t should enable dark mode")
	}
	send(m, runes("t"))
	if ui.Dark() {
		t.Error("second t should disable dark mode")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, nil, config.SearchDestructive)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestView(t *testing.T) {
	m, _ := newModel(t, seed(), config.SearchDestructive)
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.View()
	for _, want := range []string{"Todos", "buy milk", "filter: all", "1/3"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = send(m, runes("a"))
	if !strings.Contains(m.View(), "Add new todo") {
		t.Error("add form not rendered")
	}
}

func TestWindowSizeFitsList(t *testing.T) {
	m, _ := newModel(t, seed(), config.SearchDestructive)

	m = send(m, tea.WindowSizeMsg{Width: 60, Height: 12})
	if m.list.Width() != 56 || m.list.Height() != 4 {
		t.Errorf("list size = %dx%d, want 56x4", m.list.Width(), m.list.Height())
	}

	// The add form takes the room; the list keeps its minimum.
	m = send(m, runes("a"))
	if m.list.Height() != 3 {
		t.Errorf("list height with form open = %d, want 3", m.list.Height())
	}

	m = send(m, esc, tea.WindowSizeMsg{Width: 100, Height: 40})
	if m.list.Width() != 96 || m.list.Height() != 32 {
		t.Errorf("list size = %dx%d, want 96x32", m.list.Width(), m.list.Height())
	}
}
