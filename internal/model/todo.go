package model

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxTaskLen bounds the task text accepted for create and update.
const MaxTaskLen = 500

// ErrEmptyTask is returned when task text is blank after trimming.
var ErrEmptyTask = errors.New("task cannot be empty")

// Todo is the persisted task record. ID is assigned by the server.
type Todo struct {
	ID         int64  `json:"id"`
	Task       string `json:"task"`
	IsComplete bool   `json:"isComplete"`
}

// Draft is the payload sent to create a todo.
type Draft struct {
	Task       string `json:"task" validate:"required,max=500"`
	IsComplete bool   `json:"isComplete"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewDraft trims text and validates it as a new task.
func NewDraft(text string) (Draft, error) {
	d := Draft{Task: strings.TrimSpace(text)}
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Validate checks the draft; blank text maps to ErrEmptyTask.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Task) == "" {
		return ErrEmptyTask
	}
	if err := validate.Struct(d); err != nil {
		return err
	}
	return nil
}

// WithTask returns a copy with the task replaced, all other fields kept.
func (t Todo) WithTask(task string) Todo {
	t.Task = task
	return t
}

// Toggled returns a copy with the completion flag inverted.
func (t Todo) Toggled() Todo {
	t.IsComplete = !t.IsComplete
	return t
}

// Stats counts done and pending todos.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.IsComplete {
			done++
		} else {
			pending++
		}
	}
	return
}
