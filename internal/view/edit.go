package view

// Editor is the per-list edit-mode machine. It is either Viewing (zero
// value) or Editing one id with a draft of its task text.
type Editor struct {
	active bool
	id     int64
	draft  string
}

// Start enters Editing for id. Any edit already in progress is abandoned
// without saving.
func (e *Editor) Start(id int64, text string) {
	*e = Editor{active: true, id: id, draft: text}
}

// SetDraft replaces the draft. It is a no-op while Viewing.
func (e *Editor) SetDraft(text string) {
	if e.active {
		e.draft = text
	}
}

// Cancel returns to Viewing and discards the draft.
func (e *Editor) Cancel() { *e = Editor{} }

// Commit returns to Viewing and hands back what was being edited.
func (e *Editor) Commit() (id int64, draft string, ok bool) {
	id, draft, ok = e.id, e.draft, e.active
	*e = Editor{}
	return id, draft, ok
}

// Editing reports the id and draft while Editing.
func (e Editor) Editing() (id int64, draft string, ok bool) {
	return e.id, e.draft, e.active
}
