// Package cli dispatches the todo subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
	"github.com/idilsaglam/tada/internal/view"
)

// Runner holds what every subcommand needs.
type Runner struct {
	Remote view.Remote
	Logger *log.Logger
	Out    io.Writer
	Err    io.Writer

	// Group lists pending items before done ones.
	Group bool

	// Interactive runs the list UI. Defaults to tui.Run.
	Interactive func(ctx context.Context, r view.Remote, l *log.Logger) error
}

func (r *Runner) defaults() {
	if r.Out == nil {
		r.Out = os.Stdout
	}
	if r.Err == nil {
		r.Err = os.Stderr
	}
	if r.Interactive == nil {
		r.Interactive = tui.Run
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func (r *Runner) Run(ctx context.Context, args []string) int {
	r.defaults()
	if len(args) == 0 {
		PrintHelp(r.Out)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(r.Out)
		return 0

	case "ls":
		if err := r.Interactive(ctx, r.Remote, r.Logger); err != nil {
			ui.Fail(r.Err, "ls: "+err.Error())
			return 1
		}
		return 0

	case "list":
		return r.doList(ctx)

	case "add":
		if len(a) == 0 {
			ui.Fail(r.Err, "usage: todo add <task...>")
			return 2
		}
		return r.doAdd(ctx, strings.Join(a, " "))

	case "done":
		if len(a) != 1 {
			ui.Fail(r.Err, "usage: todo done <id>")
			return 2
		}
		id, ok := r.parseID(cmd, a[0])
		if !ok {
			return 2
		}
		return r.doToggle(ctx, id)

	case "edit":
		if len(a) < 2 {
			ui.Fail(r.Err, "usage: todo edit <id> <task...>")
			return 2
		}
		id, ok := r.parseID(cmd, a[0])
		if !ok {
			return 2
		}
		return r.doEdit(ctx, id, strings.Join(a[1:], " "))

	case "rm":
		if len(a) != 1 {
			ui.Fail(r.Err, "usage: todo rm <id>")
			return 2
		}
		id, ok := r.parseID(cmd, a[0])
		if !ok {
			return 2
		}
		return r.doRemove(ctx, id)
	}

	ui.Fail(r.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(r.Err)
	PrintHelp(r.Err)
	return 2
}

// PrintHelp writes the usage text to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a to-do list synced with a REST server

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  ls                    Open the interactive list
  list                  Print all items
  add <task...>         Add a new item (task can be multiple words)
  done <id>             Toggle done for the item with this id
  edit <id> <task...>   Replace the task text of an item
  rm <id>               Remove the item with this id

Flags:
  -url URL              todo collection URL
  -config FILE          TOML config file
  -timeout DURATION     per-request timeout (default none)
  -insecure             skip TLS certificate verification
  -log-file FILE        log file, - for stderr
  -log-level LEVEL      debug, info, warn or error
  -theme NAME           classic, neon or mono
  -metrics-addr ADDR    serve Prometheus metrics while running
  -group                list pending items before done ones

Examples:
  todo add "Buy milk"
  todo list
  todo done 7
  todo edit 7 Buy oat milk
  todo rm 7
`)
}

func (r *Runner) parseID(cmd, s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		ui.Fail(r.Err, cmd+": not an id: "+s)
		return 0, false
	}
	return id, true
}

// load fetches the collection into a fresh view.
func (r *Runner) load(ctx context.Context) (*view.View, bool) {
	v := view.New(r.Logger)
	if err := v.Drain(ctx, r.Remote, v.Activate()); err != nil {
		ui.Fail(r.Err, "load: "+err.Error())
		return nil, false
	}
	return v, true
}

// find loads the collection and checks that id is in it.
func (r *Runner) find(ctx context.Context, id int64) (*view.View, int) {
	v, ok := r.load(ctx)
	if !ok {
		return nil, 1
	}
	if _, ok := v.Todo(id); !ok {
		ui.Fail(r.Err, fmt.Sprintf("unknown id: %d", id))
		ui.Hint(r.Err, "run `todo list` to see valid ids")
		return nil, 2
	}
	return v, 0
}

func (r *Runner) doList(ctx context.Context) int {
	v, ok := r.load(ctx)
	if !ok {
		return 1
	}
	ui.Panel(r.Out, ui.Summary(v.Todos(), r.Group))
	return 0
}

func (r *Runner) doAdd(ctx context.Context, task string) int {
	if _, err := model.NewDraft(task); err != nil {
		if errors.Is(err, model.ErrEmptyTask) {
			ui.Fail(r.Err, "add: empty task")
		} else {
			ui.Fail(r.Err, "add: "+err.Error())
		}
		return 2
	}

	v := view.New(r.Logger)
	v.SetInput(task)
	if err := v.Drain(ctx, r.Remote, v.Submit()); err != nil {
		ui.Fail(r.Err, "add: "+err.Error())
		return 1
	}
	todos := v.Todos()
	if len(todos) == 0 {
		ui.Fail(r.Err, "add: nothing was created")
		return 1
	}
	ui.OK(r.Out, fmt.Sprintf("added #%d", todos[len(todos)-1].ID))
	return 0
}

func (r *Runner) doToggle(ctx context.Context, id int64) int {
	v, code := r.find(ctx, id)
	if v == nil {
		return code
	}
	if err := v.Drain(ctx, r.Remote, v.Toggle(id)); err != nil {
		ui.Fail(r.Err, "done: "+err.Error())
		return 1
	}
	t, _ := v.Todo(id)
	if t.IsComplete {
		ui.OK(r.Out, fmt.Sprintf("#%d marked done", id))
	} else {
		ui.OK(r.Out, fmt.Sprintf("#%d marked pending", id))
	}
	return 0
}

func (r *Runner) doEdit(ctx context.Context, id int64, task string) int {
	d, err := model.NewDraft(task)
	if err != nil {
		if errors.Is(err, model.ErrEmptyTask) {
			ui.Fail(r.Err, "edit: empty task")
		} else {
			ui.Fail(r.Err, "edit: "+err.Error())
		}
		return 2
	}

	v, code := r.find(ctx, id)
	if v == nil {
		return code
	}
	reqs := v.Update(id, d.Task)
	if len(reqs) == 0 {
		ui.OK(r.Out, fmt.Sprintf("#%d unchanged", id))
		return 0
	}
	if err := v.Drain(ctx, r.Remote, reqs); err != nil {
		ui.Fail(r.Err, "edit: "+err.Error())
		return 1
	}
	ui.OK(r.Out, fmt.Sprintf("#%d updated", id))
	return 0
}

func (r *Runner) doRemove(ctx context.Context, id int64) int {
	v, code := r.find(ctx, id)
	if v == nil {
		return code
	}
	if err := v.Drain(ctx, r.Remote, v.Delete(id)); err != nil {
		ui.Fail(r.Err, "rm: "+err.Error())
		return 1
	}
	ui.OK(r.Out, fmt.Sprintf("#%d removed", id))
	return 0
}
