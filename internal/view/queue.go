package view

// intent is a user action on one id whose payload is not resolved yet.
type intent struct {
	op   Op
	id   int64
	task string // OpUpdate
}

// queue serializes intents per id: at most one request per id is in flight.
type queue struct {
	busy    map[int64]bool
	waiting map[int64][]intent
}

func newQueue() *queue {
	return &queue{
		busy:    make(map[int64]bool),
		waiting: make(map[int64][]intent),
	}
}

// push reports whether it can be sent now. Otherwise it waits behind the
// request already in flight for the same id.
func (q *queue) push(it intent) bool {
	if !q.busy[it.id] {
		q.busy[it.id] = true
		return true
	}
	q.waiting[it.id] = append(q.waiting[it.id], it)
	return false
}

// pop hands over the next waiting intent for id, keeping the id busy, or
// frees the id when nothing waits.
func (q *queue) pop(id int64) (intent, bool) {
	w := q.waiting[id]
	if len(w) == 0 {
		delete(q.waiting, id)
		delete(q.busy, id)
		return intent{}, false
	}
	next := w[0]
	if len(w) == 1 {
		delete(q.waiting, id)
	} else {
		q.waiting[id] = w[1:]
	}
	return next, true
}

// waitingFor returns how many intents are queued behind id.
func (q *queue) waitingFor(id int64) int {
	return len(q.waiting[id])
}
