package model

import (
	"fmt"
	"strings"
)

// Filter selects todos by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterCompleted, FilterPending:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("invalid filter %q, must be one of: all, completed, pending", s)
	}
}

func (f Filter) Matches(t Todo) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

// Next cycles all -> pending -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterPending
	case FilterPending:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// SortCriterion names a stored-order sort.
type SortCriterion string

const (
	SortByPriority SortCriterion = "priority"
	SortByDueDate  SortCriterion = "dueDate"
)

func ParseSortCriterion(s string) (SortCriterion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "priority":
		return SortByPriority, nil
	case "duedate", "due":
		return SortByDueDate, nil
	default:
		return "", fmt.Errorf("invalid sort criterion %q, must be one of: priority, dueDate", s)
	}
}

// Draft holds the fields of the add form between submissions.
type Draft struct {
	Text        string
	Description string
	Priority    Priority
	DueDate     string
}

// Reset restores the form defaults.
func (d *Draft) Reset() {
	d.Text = ""
	d.Description = ""
	d.Priority = PriorityLow
	d.DueDate = ""
}
