// Package view keeps the local copy of the remote todo collection in step
// with the server.
//
// Every user action returns the Requests to send. Callers execute them
// (Execute) wherever they like and feed each Result back through Resolve,
// which is the only place the cache changes. Requests on the same id are
// serialized: later intents wait until the earlier one resolves and are
// built from the cache as it is at that moment.
package view

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/model"
)

// View is the TodoListView state. It is not safe for concurrent use.
type View struct {
	todos   []model.Todo
	loaded  bool
	input   string
	edit    Editor
	queue   *queue
	seq     uint64
	pending int
	logger  *log.Logger
}

// New returns an empty, unloaded view.
func New(logger *log.Logger) *View {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &View{queue: newQueue(), logger: logger}
}

// Todos returns a copy of the cache in display order.
func (v *View) Todos() []model.Todo { return slices.Clone(v.todos) }

// Todo looks up a cached todo by id.
func (v *View) Todo(id int64) (model.Todo, bool) {
	i := indexOf(v.todos, id)
	if i < 0 {
		return model.Todo{}, false
	}
	return v.todos[i], true
}

// Loaded reports whether a load has succeeded at least once.
func (v *View) Loaded() bool { return v.loaded }

// Pending returns the number of requests handed out and not yet resolved.
func (v *View) Pending() int { return v.pending }

// Input returns the new-task input text.
func (v *View) Input() string { return v.input }

// SetInput replaces the new-task input text.
func (v *View) SetInput(s string) { v.input = s }

// Editing reports the item being edited, if any.
func (v *View) Editing() (id int64, draft string, ok bool) { return v.edit.Editing() }

// Activate fetches the whole collection. Calling it again reloads.
func (v *View) Activate() []Request {
	return []Request{v.issue(Request{Op: OpLoad})}
}

// Submit creates a todo from the input text. Blank input sends nothing.
func (v *View) Submit() []Request {
	d, err := model.NewDraft(v.input)
	if err != nil {
		if !errors.Is(err, model.ErrEmptyTask) {
			v.logger.Warn("create rejected", "err", err)
		}
		return nil
	}
	return []Request{v.issue(Request{Op: OpCreate, Draft: d})}
}

// StartEdit enters edit mode for id with its current text as the draft.
// An edit already in progress is abandoned without saving.
func (v *View) StartEdit(id int64) bool {
	t, ok := v.Todo(id)
	if !ok {
		return false
	}
	v.edit.Start(id, t.Task)
	return true
}

// SetDraft replaces the draft of the item being edited.
func (v *View) SetDraft(s string) { v.edit.SetDraft(s) }

// CancelEdit leaves edit mode and discards the draft.
func (v *View) CancelEdit() { v.edit.Cancel() }

// CommitEdit leaves edit mode and, when the trimmed draft is non-empty and
// differs from the cached text, replaces the todo with the new text. Edit
// mode is left whatever the outcome of the request.
func (v *View) CommitEdit() []Request {
	id, draft, ok := v.edit.Commit()
	if !ok {
		return nil
	}
	return v.Update(id, draft)
}

// Update replaces the task text of id, keeping every other field.
func (v *View) Update(id int64, text string) []Request {
	task := strings.TrimSpace(text)
	t, ok := v.Todo(id)
	if !ok || task == "" || task == t.Task {
		return nil
	}
	if _, err := model.NewDraft(task); err != nil {
		v.logger.Warn("update rejected", "id", id, "err", err)
		return nil
	}
	return v.dispatch(intent{op: OpUpdate, id: id, task: task})
}

// Toggle inverts the completion flag of id.
func (v *View) Toggle(id int64) []Request {
	if _, ok := v.Todo(id); !ok {
		return nil
	}
	return v.dispatch(intent{op: OpToggle, id: id})
}

// Delete removes id.
func (v *View) Delete(id int64) []Request {
	if _, ok := v.Todo(id); !ok {
		return nil
	}
	return v.dispatch(intent{op: OpDelete, id: id})
}

// Resolve applies res to the cache and returns any request that was waiting
// on the same id. Failures are logged and leave the cache unchanged.
func (v *View) Resolve(res Result) []Request {
	req := res.Request
	if v.pending > 0 {
		v.pending--
	}

	if res.Err != nil {
		v.logFailure(req, res.Err)
	} else {
		v.todos = Reduce(v.todos, res)
		v.afterSuccess(req, res)
	}

	if !req.Op.keyed() {
		return nil
	}
	return v.release(req.ID)
}

func (v *View) afterSuccess(req Request, res Result) {
	switch req.Op {
	case OpLoad:
		v.loaded = true
		if id, _, ok := v.edit.Editing(); ok {
			if _, found := v.Todo(id); !found {
				v.edit.Cancel()
			}
		}
		v.logger.Debug("todos loaded", "count", len(v.todos))
	case OpCreate:
		if strings.TrimSpace(v.input) == req.Draft.Task {
			v.input = ""
		}
		v.logger.Debug("todo created", "id", res.Created.ID)
	case OpDelete:
		if id, _, ok := v.edit.Editing(); ok && id == req.ID {
			v.edit.Cancel()
		}
		v.logger.Debug("todo deleted", "id", req.ID)
	default:
		v.logger.Debug("todo replaced", "op", req.Op, "id", req.ID)
	}
}

func (v *View) logFailure(req Request, err error) {
	if errors.Is(err, context.Canceled) {
		v.logger.Debug("request canceled", "op", req.Op, "id", req.ID)
		return
	}
	switch req.Op {
	case OpLoad:
		v.logger.Error("fetch todos failed", "err", err)
	case OpCreate:
		v.logger.Error("create todo failed", "task", req.Draft.Task, "err", err)
	default:
		v.logger.Error(req.Op.String()+" todo failed", "id", req.ID, "err", err)
	}
}

// dispatch sends it now if nothing is in flight for its id, else queues it.
func (v *View) dispatch(it intent) []Request {
	if !v.queue.push(it) {
		v.logger.Debug("intent queued", "op", it.op, "id", it.id, "waiting", v.queue.waitingFor(it.id))
		return nil
	}
	if req, ok := v.resolveIntent(it); ok {
		return []Request{req}
	}
	return v.release(it.id)
}

// release frees id and sends the next waiting intent that still applies.
func (v *View) release(id int64) []Request {
	for {
		next, ok := v.queue.pop(id)
		if !ok {
			return nil
		}
		if req, ok := v.resolveIntent(next); ok {
			return []Request{req}
		}
	}
}

// resolveIntent builds the request for it from the current cache. Intents
// whose target is gone, or that would change nothing, are dropped.
func (v *View) resolveIntent(it intent) (Request, bool) {
	t, ok := v.Todo(it.id)
	if !ok {
		v.logger.Debug("intent dropped", "op", it.op, "id", it.id)
		return Request{}, false
	}
	switch it.op {
	case OpUpdate:
		if it.task == t.Task {
			return Request{}, false
		}
		return v.issue(Request{Op: OpUpdate, ID: it.id, Todo: t.WithTask(it.task)}), true
	case OpToggle:
		return v.issue(Request{Op: OpToggle, ID: it.id, Todo: t.Toggled()}), true
	case OpDelete:
		return v.issue(Request{Op: OpDelete, ID: it.id}), true
	}
	return Request{}, false
}

func (v *View) issue(req Request) Request {
	v.seq++
	v.pending++
	req.Seq = v.seq
	return req
}

// Drain executes reqs one at a time against r, resolving each result and
// following up with whatever Resolve returns. It returns the joined errors
// of failed requests.
func (v *View) Drain(ctx context.Context, r Remote, reqs []Request) error {
	var errs []error
	for len(reqs) > 0 {
		req := reqs[0]
		reqs = reqs[1:]
		res := Execute(ctx, r, req)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		reqs = append(reqs, v.Resolve(res)...)
	}
	return errors.Join(errs...)
}
