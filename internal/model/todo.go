package model

import (
	"fmt"
	"strings"
	"time"
)

// Todo is the domain model for a single task.
// Selected is UI state for bulk operations and is dropped from JSON when false.
type Todo struct {
	ID          int64    `json:"id"`
	Text        string   `json:"text"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
	Completed   bool     `json:"completed"`
	Selected    bool     `json:"selected,omitempty"`
}

// Priority is one of low, medium or high.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities: high=3, medium=2, anything else=1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	case "":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("invalid priority %q, must be one of: low, medium, high", s)
	}
}

// Normalize maps any value outside low, medium and high to low,
// the rank such values already sort with.
func (p Priority) Normalize() Priority {
	if n, err := ParsePriority(string(p)); err == nil {
		return n
	}
	return PriorityLow
}

// Next cycles low -> medium -> high -> low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

var dueDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	time.RFC3339,
}

// ParseDueDate parses the due date formats produced by date inputs.
// It reports false for empty or unparsable values.
func ParseDueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
