package view

import (
	"slices"

	"github.com/idilsaglam/tada/internal/model"
)

// Reduce returns the cache after res is applied. It never modifies todos.
// Failed results leave the cache as it was.
func Reduce(todos []model.Todo, res Result) []model.Todo {
	if res.Err != nil {
		return todos
	}
	switch res.Request.Op {
	case OpLoad:
		return slices.Clone(res.Todos)
	case OpCreate:
		if i := indexOf(todos, res.Created.ID); i >= 0 {
			out := slices.Clone(todos)
			out[i] = res.Created
			return out
		}
		return append(slices.Clone(todos), res.Created)
	case OpUpdate:
		return patch(todos, res.Request.ID, func(t *model.Todo) { t.Task = res.Request.Todo.Task })
	case OpToggle:
		return patch(todos, res.Request.ID, func(t *model.Todo) { t.IsComplete = res.Request.Todo.IsComplete })
	case OpDelete:
		i := indexOf(todos, res.Request.ID)
		if i < 0 {
			return todos
		}
		return slices.Delete(slices.Clone(todos), i, i+1)
	}
	return todos
}

func patch(todos []model.Todo, id int64, fn func(*model.Todo)) []model.Todo {
	i := indexOf(todos, id)
	if i < 0 {
		return todos
	}
	out := slices.Clone(todos)
	fn(&out[i])
	return out
}

func indexOf(todos []model.Todo, id int64) int {
	return slices.IndexFunc(todos, func(t model.Todo) bool { return t.ID == id })
}
