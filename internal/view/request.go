package view

import (
	"context"
	"fmt"

	"github.com/idilsaglam/tada/internal/model"
)

// Op names the kind of remote call a Request performs.
type Op int

const (
	OpLoad Op = iota
	OpCreate
	OpUpdate
	OpToggle
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpLoad:
		return "load"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpToggle:
		return "toggle"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// keyed reports whether requests of this kind are serialized per id.
func (o Op) keyed() bool {
	return o == OpUpdate || o == OpToggle || o == OpDelete
}

// Request is an intent whose payload has been resolved against the cache.
type Request struct {
	Seq   uint64
	Op    Op
	ID    int64
	Draft model.Draft // OpCreate
	Todo  model.Todo  // OpUpdate, OpToggle: the full replacement
}

// Result is what came back for a Request.
type Result struct {
	Request Request
	Todos   []model.Todo // OpLoad
	Created model.Todo   // OpCreate
	Err     error
}

// Remote is the collection the view synchronizes with.
type Remote interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, d model.Draft) (model.Todo, error)
	Replace(ctx context.Context, t model.Todo) error
	Delete(ctx context.Context, id int64) error
}

// Execute performs req against r. It is safe to call from any goroutine;
// the returned Result must be handed back to View.Resolve.
func Execute(ctx context.Context, r Remote, req Request) Result {
	res := Result{Request: req}
	switch req.Op {
	case OpLoad:
		res.Todos, res.Err = r.List(ctx)
	case OpCreate:
		res.Created, res.Err = r.Create(ctx, req.Draft)
	case OpUpdate, OpToggle:
		res.Err = r.Replace(ctx, req.Todo)
	case OpDelete:
		res.Err = r.Delete(ctx, req.ID)
	default:
		res.Err = fmt.Errorf("unknown op %v", req.Op)
	}
	return res
}
