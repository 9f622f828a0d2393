package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// ProgressBar renders a Unicode progress bar with done/total counts.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// Panel draws a framed box around lines using the current theme.
func Panel(lines []string) string {
	return current.Border.Render(strings.Join(lines, "\n"))
}

// Header is the title line with live counts.
func Header(done, pending int) string {
	t := current
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
}

// PriorityTag renders the priority in its theme color.
func PriorityTag(p model.Priority) string {
	t := current
	switch p {
	case model.PriorityHigh:
		return t.High.Render("high")
	case model.PriorityMedium:
		return t.Medium.Render("med")
	default:
		return t.Low.Render("low")
	}
}

// TodoLine renders one todo on a single line: mark, box, text, priority, due date.
func TodoLine(td model.Todo) string {
	t := current
	mark := t.Muted.Render(t.MarkOff)
	if td.Selected {
		mark = t.Accent.Render(t.MarkOn)
	}
	box := t.Muted.Render(t.BoxUnchecked)
	text := td.Text
	if len([]rune(text)) > 80 {
		text = string([]rune(text)[:77]) + "..."
	}
	if td.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	line := fmt.Sprintf("%s %s %s  %s", mark, box, text, PriorityTag(td.Priority))
	if td.DueDate != "" {
		line += "  " + t.Muted.Render("due "+td.DueDate)
	}
	return line
}

// OK prints a success line.
func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render(current.SymDone+" "+msg))
}

// Fail prints a failure line.
func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render("✖ "+msg))
}
