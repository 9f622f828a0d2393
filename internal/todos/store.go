// Package todos owns the todo list: mutations, derived views, change
// notification and persistence through a key-value store.
package todos

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/schema"
)

// StorageKey is the only key the store reads or writes.
const StorageKey = "todos"

// Options tune a Store. Zero values pick the defaults.
type Options struct {
	Logger     *log.Logger
	SearchMode config.SearchMode
	Now        func() time.Time
}

// Store is the single source of truth for the todo list.
// Every change replaces the list value and notifies subscribers in order.
// Subscribers may read the store but must not call mutating methods.
type Store struct {
	notifyMu   sync.Mutex // serializes change+delivery
	mu         sync.Mutex // guards the fields below
	kv         jsonstore.KV
	logger     *log.Logger
	now        func() time.Time
	searchMode config.SearchMode

	todos      []model.Todo
	filter     model.Filter
	searchTerm string

	subs       map[int]func([]model.Todo)
	subOrder   []int
	nextSubID  int
	persistErr error
}

// New loads the persisted list from kv and registers the persistence subscriber.
func New(kv jsonstore.KV, opts Options) *Store {
	s := &Store{
		kv:         kv,
		logger:     opts.Logger,
		now:        opts.Now,
		searchMode: opts.SearchMode,
		filter:     model.FilterAll,
		subs:       map[int]func([]model.Todo){},
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.searchMode == "" {
		s.searchMode = config.SearchDestructive
	}
	s.todos = s.Load()
	s.Subscribe(s.persist)
	return s
}

// Load reads the persisted list. Missing, unreadable or malformed data
// yields an empty list; it never fails.
func (s *Store) Load() []model.Todo {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logger.Warn("read todos, starting empty", "err", err)
		return []model.Todo{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []model.Todo{}
	}
	if err := schema.ValidateTodos([]byte(raw)); err != nil {
		s.logger.Warn("persisted todos are malformed, starting empty", "err", err)
		return []model.Todo{}
	}
	var todos []model.Todo
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		s.logger.Warn("decode todos, starting empty", "err", err)
		return []model.Todo{}
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return s.repair(todos)
}

// repair brings loaded todos back to what the store itself would write:
// known priorities only and unique ids. Later duplicates get fresh ids.
func (s *Store) repair(todos []model.Todo) []model.Todo {
	var maxID int64
	for _, t := range todos {
		maxID = max(maxID, t.ID)
	}
	seen := make(map[int64]bool, len(todos))
	for i := range todos {
		t := &todos[i]
		if p := t.Priority.Normalize(); p != t.Priority {
			s.logger.Debug("unknown priority, using low", "id", t.ID, "priority", t.Priority)
			t.Priority = p
		}
		if seen[t.ID] {
			maxID++
			s.logger.Warn("duplicate todo id, assigning a new one", "id", t.ID, "new_id", maxID)
			t.ID = maxID
		}
		seen[t.ID] = true
	}
	return todos
}

func (s *Store) persist(todos []model.Todo) {
	b, err := json.Marshal(todos)
	if err == nil {
		err = s.kv.Set(StorageKey, string(b))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.persistErr = fmt.Errorf("persist todos: %w", err)
		s.logger.Warn("could not persist todos, keeping them in memory", "err", err, "count", len(todos))
		return
	}
	s.persistErr = nil
	s.logger.Debug("persisted todos", "count", len(todos))
}

// Subscribe registers fn and calls it right away with the current list,
// then after every change. The returned func unregisters it.
func (s *Store) Subscribe(fn func([]model.Todo)) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subOrder = append(s.subOrder, id)
	current := slices.Clone(s.todos)
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		s.subOrder = slices.DeleteFunc(s.subOrder, func(v int) bool { return v == id })
	}
}

// update runs change with s.mu held. When change returns ok, its list
// replaces the current one and subscribers are notified after s.mu is
// released. notifyMu keeps deliveries in commit order.
func (s *Store) update(change func() (next []model.Todo, ok bool)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next, ok := change()
	if !ok {
		s.mu.Unlock()
		return
	}
	s.todos = next
	subs := make([]func([]model.Todo), 0, len(s.subOrder))
	for _, id := range s.subOrder {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(slices.Clone(next))
	}
}

// Add appends a new pending todo. It reports whether the todo was added,
// which is the caller's cue to reset its input form. Blank text is ignored.
func (s *Store) Add(text, description string, priority model.Priority, dueDate string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	s.update(func() ([]model.Todo, bool) {
		todo := model.Todo{
			ID:          s.nextID(),
			Text:        text,
			Description: description,
			Priority:    priority.Normalize(),
			DueDate:     dueDate,
		}
		next := make([]model.Todo, 0, len(s.todos)+1)
		next = append(next, s.todos...)
		return append(next, todo), true
	})
	return true
}

// AddDraft adds the draft's fields and resets the draft on success.
func (s *Store) AddDraft(d *model.Draft) bool {
	if !s.Add(d.Text, d.Description, d.Priority, d.DueDate) {
		return false
	}
	d.Reset()
	return true
}

// nextID is the creation time in milliseconds, bumped past the largest
// existing id so two todos created in the same tick stay distinct.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	for _, t := range s.todos {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.todos, func(t model.Todo) bool { return t.ID == id })
}

// Toggle flips completion of the todo with id. Unknown ids change nothing
// and notify nobody.
func (s *Store) Toggle(id int64) {
	s.update(func() ([]model.Todo, bool) {
		i := s.indexOf(id)
		if i < 0 {
			return nil, false
		}
		next := slices.Clone(s.todos)
		next[i].Completed = !next[i].Completed
		return next, true
	})
}

// ToggleSelected flips the bulk-operation mark of the todo with id.
func (s *Store) ToggleSelected(id int64) {
	s.update(func() ([]model.Todo, bool) {
		i := s.indexOf(id)
		if i < 0 {
			return nil, false
		}
		next := slices.Clone(s.todos)
		next[i].Selected = !next[i].Selected
		return next, true
	})
}

// Delete removes the todo with id. Unknown ids are a no-op.
func (s *Store) Delete(id int64) {
	s.update(func() ([]model.Todo, bool) {
		i := s.indexOf(id)
		if i < 0 {
			return nil, false
		}
		next := make([]model.Todo, 0, len(s.todos)-1)
		next = append(next, s.todos[:i]...)
		return append(next, s.todos[i+1:]...), true
	})
}

// BulkComplete marks every selected todo completed.
func (s *Store) BulkComplete() {
	s.update(func() ([]model.Todo, bool) {
		next := slices.Clone(s.todos)
		for i := range next {
			if next[i].Selected {
				next[i].Completed = true
			}
		}
		return next, true
	})
}

// BulkDelete removes every selected todo, keeping the others in order.
func (s *Store) BulkDelete() {
	s.update(func() ([]model.Todo, bool) {
		next := make([]model.Todo, 0, len(s.todos))
		for _, t := range s.todos {
			if !t.Selected {
				next = append(next, t)
			}
		}
		return next, true
	})
}

// SortBy reorders the stored list. Both sorts are stable.
// Priority sorts high first; due date sorts earliest first with empty or
// unparsable dates ahead of every real date.
func (s *Store) SortBy(c model.SortCriterion) error {
	var cmp func(a, b model.Todo) int
	switch c {
	case model.SortByPriority:
		cmp = func(a, b model.Todo) int { return b.Priority.Rank() - a.Priority.Rank() }
	case model.SortByDueDate:
		cmp = compareDueDates
	default:
		return fmt.Errorf("unknown sort criterion %q", c)
	}

	s.update(func() ([]model.Todo, bool) {
		next := slices.Clone(s.todos)
		slices.SortStableFunc(next, cmp)
		return next, true
	})
	return nil
}

func compareDueDates(a, b model.Todo) int {
	ta, okA := model.ParseDueDate(a.DueDate)
	tb, okB := model.ParseDueDate(b.DueDate)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	default:
		return ta.Compare(tb)
	}
}

// SetFilter changes the status filter used by FilteredView. It does not notify.
func (s *Store) SetFilter(f model.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// ApplySearch applies a settled search term. In destructive mode the stored
// list is narrowed to todos whose text contains term, ignoring case, and the
// rest are gone for good. In view mode only FilteredView is narrowed.
func (s *Store) ApplySearch(term string) {
	s.update(func() ([]model.Todo, bool) {
		s.searchTerm = term
		if s.searchMode == config.SearchView {
			return nil, false
		}
		next := make([]model.Todo, 0, len(s.todos))
		for _, t := range s.todos {
			if matchesSearch(t, term) {
				next = append(next, t)
			}
		}
		return next, true
	})
}

func matchesSearch(t model.Todo, term string) bool {
	return strings.Contains(strings.ToLower(t.Text), strings.ToLower(term))
}

// FilteredView returns the todos matching the current filter, and in view
// search mode the current search term. It never mutates or notifies.
func (s *Store) FilteredView() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if !s.filter.Matches(t) {
			continue
		}
		if s.searchMode == config.SearchView && !matchesSearch(t, s.searchTerm) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Todos returns a copy of the stored list.
func (s *Store) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.todos)
}

func (s *Store) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Store) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

func (s *Store) SearchMode() config.SearchMode { return s.searchMode }

// Stats counts completed and pending todos in the stored list.
func (s *Store) Stats() (done, pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// PersistErr returns the last persistence failure, or nil once a write succeeds.
func (s *Store) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}
