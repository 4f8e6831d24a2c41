package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/tada/internal/model"
)

// maxTaskWidth truncates long tasks in one-shot list output.
const maxTaskWidth = 80

// OK prints a success line.
func OK(w io.Writer, msg string) { fmt.Fprintln(w, current.Success.Render(current.SymOK+" "+msg)) }

// Fail prints a failure line.
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, current.Error.Render(current.SymFail+" "+msg)) }

// Hint prints a muted follow-up line.
func Hint(w io.Writer, msg string) { fmt.Fprintln(w, current.Muted.Render("Hint: "+msg)) }

// ProgressBar renders a bar with a done/total suffix.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	pct := done * 100 / total
	return fmt.Sprintf("%s%s %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct)
}

// Frame draws lines inside the theme's border.
func Frame(lines []string) string {
	border := lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}

// Panel writes a framed box to w.
func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, Frame(lines))
}

// Header is the counts line shown above every list.
func Header(todos []model.Todo) string {
	d, p := model.Stats(todos)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		current.Title.Render("Todos"),
		current.Success.Render(current.SymDone), d,
		current.Pending.Render(current.SymPending), p,
		current.Accent.Render("Total"), len(todos),
	)
}

// Box renders the completion checkbox for t.
func Box(t model.Todo) string {
	if t.IsComplete {
		return current.Success.Render(current.BoxChecked)
	}
	return current.Muted.Render(current.BoxUnchecked)
}

// Task renders the task text, struck through when complete.
func Task(t model.Todo) string {
	if t.IsComplete {
		return current.Done.Render(t.Task)
	}
	return t.Task
}

// ListLines renders todos one per line, addressed by server id.
func ListLines(todos []model.Todo) []string {
	if len(todos) == 0 {
		return []string{current.Muted.Render("no items")}
	}
	width := 0
	for _, t := range todos {
		width = max(width, len(fmt.Sprint(t.ID)))
	}
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		t.Task = ansi.Truncate(t.Task, maxTaskWidth, "...")
		id := fmt.Sprintf("#%-*d", width, t.ID)
		out = append(out, fmt.Sprintf("%s %s %s", current.Muted.Render(id), Box(t), Task(t)))
	}
	return out
}

// GroupLines renders pending todos, then done ones.
func GroupLines(todos []model.Todo) []string {
	var pend, done []model.Todo
	for _, t := range todos {
		if t.IsComplete {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	var lines []string
	lines = append(lines, current.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, current.Muted.Render("(none)"))
	} else {
		lines = append(lines, ListLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, current.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, current.Muted.Render("(none)"))
	} else {
		lines = append(lines, ListLines(done)...)
	}
	return lines
}

// Summary renders the full one-shot list panel content.
func Summary(todos []model.Todo, group bool) []string {
	d, _ := model.Stats(todos)
	lines := []string{
		Header(todos),
		current.Muted.Render(ProgressBar(d, len(todos), 28)),
		"",
	}
	if group {
		lines = append(lines, GroupLines(todos)...)
	} else {
		lines = append(lines, ListLines(todos)...)
	}
	lines = append(lines, "", current.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	return lines
}
