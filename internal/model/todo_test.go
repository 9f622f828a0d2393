package model

import (
	"testing"
	"time"
)

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		p    Priority
		want int
	}{
		{PriorityHigh, 3},
		{PriorityMedium, 2},
		{PriorityLow, 1},
		{"", 1},
		{"urgent", 1},
	}
	for _, tt := range tests {
		if got := tt.p.Rank(); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"low", PriorityLow, false},
		{" HIGH ", PriorityHigh, false},
		{"Medium", PriorityMedium, false},
		{"", PriorityLow, false},
		{"urgent", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePriority(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{"date input", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"datetime-local input", "2024-03-05T10:30", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), true},
		{"rfc3339", "2024-03-05T10:30:00Z", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "next tuesday", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDueDate(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterMatches(t *testing.T) {
	done := Todo{Completed: true}
	open := Todo{}

	if !FilterAll.Matches(done) || !FilterAll.Matches(open) {
		t.Error("all should match everything")
	}
	if !FilterCompleted.Matches(done) || FilterCompleted.Matches(open) {
		t.Error("completed should match only completed todos")
	}
	if FilterPending.Matches(done) || !FilterPending.Matches(open) {
		t.Error("pending should match only open todos")
	}
}

func TestParseSortCriterion(t *testing.T) {
	for in, want := range map[string]SortCriterion{
		"priority": SortByPriority,
		"dueDate":  SortByDueDate,
		"due":      SortByDueDate,
	} {
		got, err := ParseSortCriterion(in)
		if err != nil || got != want {
			t.Errorf("ParseSortCriterion(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSortCriterion("title"); err == nil {
		t.Error("expected error for unknown criterion")
	}
}

func TestDraftReset(t *testing.T) {
	d := Draft{Text: "a", Description: "b", Priority: PriorityHigh, DueDate: "2024-01-01"}
	d.Reset()
	if d != (Draft{Priority: PriorityLow}) {
		t.Errorf("Reset left %+v", d)
	}
}

func TestPriorityNormalize(t *testing.T) {
	tests := []struct {
		in   Priority
		want Priority
	}{
		{PriorityHigh, PriorityHigh},
		{"Medium", PriorityMedium},
		{"", PriorityLow},
		{"urgent", PriorityLow},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Priority(%q).Normalize() = %q, want %q", tt.in, got, tt.want)
		}
	}
}
