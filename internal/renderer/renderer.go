// Package renderer formats execution results for the terminal. Pretty mode
// is for humans; json mode emits one result object per line for pipelines.
// The core produces structured results and never prints.
package renderer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/hay-kot/tally/internal/core/config"
	"github.com/hay-kot/tally/internal/core/event"
	"github.com/hay-kot/tally/internal/core/grammar"
	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/tally"
	"github.com/hay-kot/tally/pkg/iojson"
)

// Renderer writes formatted results to one output stream.
type Renderer struct {
	w    io.Writer
	json bool
}

// New resolves the output mode against the writer and returns a renderer.
// Auto picks pretty when the writer is a terminal, json otherwise.
func New(w io.Writer, mode config.OutputMode) *Renderer {
	return &Renderer{w: w, json: resolve(w, mode) == config.OutputJSON}
}

// JSON reports whether the renderer is in machine-output mode.
func (r *Renderer) JSON() bool { return r.json }

func resolve(w io.Writer, mode config.OutputMode) config.OutputMode {
	switch mode {
	case config.OutputPretty, config.OutputJSON:
		return mode
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return config.OutputPretty
	}
	return config.OutputJSON
}

// Result renders one execution result.
func (r *Renderer) Result(res tally.ExecutionResult) error {
	if r.json {
		return iojson.WriteLine(r.w, res)
	}

	var b strings.Builder

	if res.Summary != "" {
		mark := successStyle.Render("✓")
		if !res.Success {
			mark = errorStyle.Render("✗")
		}
		fmt.Fprintf(&b, "%s %s\n", mark, summaryStyle.Render(res.Summary))
	}

	for _, resErr := range res.Errors {
		field := ""
		if resErr.Field != "" {
			field = resErr.Field + ": "
		}
		fmt.Fprintf(&b, "  %s\n", errorStyle.Render(fmt.Sprintf("%s%s", field, resErr.Message)))
	}

	if len(res.Candidates) > 0 {
		fmt.Fprintf(&b, "  %s %s\n",
			mutedStyle.Render("did you mean:"),
			warningStyle.Render(strings.Join(res.Candidates, ", ")))
	}

	for _, t := range res.Tasks {
		b.WriteString(taskLine(t))
	}

	for _, ev := range res.Events {
		b.WriteString(eventLine(ev))
	}

	for _, line := range res.Usage {
		fmt.Fprintf(&b, "  %s\n", mutedStyle.Render(line))
	}

	if res.Prompt != "" {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf("(%s?)", res.Prompt)))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Tasks renders a plain task listing outside of an execution result.
func (r *Renderer) Tasks(tasks []task.Task) error {
	if r.json {
		return iojson.WriteLine(r.w, tasks)
	}
	var b strings.Builder
	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render("no tasks") + "\n")
	}
	for _, t := range tasks {
		b.WriteString(taskLine(t))
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Events renders the audit trail.
func (r *Renderer) Events(events []event.Event) error {
	if r.json {
		return iojson.WriteLine(r.w, events)
	}
	var b strings.Builder
	if len(events) == 0 {
		b.WriteString(mutedStyle.Render("no events") + "\n")
	}
	for _, ev := range events {
		b.WriteString(eventLine(ev))
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Menu renders the numbered main menu from the grammar table. JSON mode
// skips it; menus are interactive furniture, not data.
func (r *Renderer) Menu(table *grammar.Table) error {
	if r.json {
		return nil
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("tally") + "\n")
	for _, entry := range table.Entries() {
		if entry.MenuIndex == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			menuIndexStyle.Render(fmt.Sprintf("%d.", entry.MenuIndex)),
			entry.Name,
			mutedStyle.Render(entry.Help))
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Error renders a fatal, pre-dispatch failure (config load, bad flags).
func (r *Renderer) Error(msg string, err error) error {
	if r.json {
		return iojson.WriteLine(r.w, iojson.Error{
			Message: msg,
			Data:    map[string]any{"error": err.Error()},
		})
	}
	_, werr := fmt.Fprintf(r.w, "%s %s: %v\n", errorStyle.Render("✗"), msg, err)
	return werr
}

func taskLine(t task.Task) string {
	mark := pendingMarkStyle.Render("[ ]")
	title := t.Title
	if t.Status == task.StatusCompleted {
		mark = completedMarkStyle.Render("[x]")
		title = completedTitleStyle.Render(title)
	}

	line := fmt.Sprintf("  %s %s %s", mark, menuIndexStyle.Render(fmt.Sprintf("%d.", t.Num)), title)
	if len(t.Tags) > 0 {
		parts := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			parts = append(parts, tagStyle.Render("+"+tag))
		}
		line += " " + strings.Join(parts, " ")
	}
	if t.Description != "" {
		line += "\n      " + mutedStyle.Render(t.Description)
	}
	return line + "\n"
}

func eventLine(ev event.Event) string {
	line := fmt.Sprintf("  %s %s task %d %q",
		mutedStyle.Render(fmt.Sprintf("#%d", ev.Seq)),
		string(ev.Type),
		ev.Task.Num,
		ev.Task.Title)
	if ev.NoOp {
		line += " " + mutedStyle.Render("(no-op)")
	}
	return line + "\n"
}
