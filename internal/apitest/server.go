// Package apitest serves an in-memory todo collection for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/idilsaglam/tada/internal/model"
)

// CollectionPath is where the fake mounts the todo resource.
const CollectionPath = "/api/todos"

// Call records one request received by the fake.
type Call struct {
	Method string
	Path   string
	Body   string
}

type failure struct {
	code int
	body string
}

// Server is a fake of the remote todo collection. Failures can be injected
// per HTTP method; ids are assigned sequentially starting at 1.
type Server struct {
	srv    *httptest.Server
	logger *zap.Logger

	mu       sync.Mutex
	todos    []model.Todo
	nextID   int64
	failures map[string]failure
	raw      map[string]string
	calls    []Call
}

// New starts a fake and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		logger:   zap.NewNop(),
		nextID:   1,
		failures: make(map[string]failure),
		raw:      make(map[string]string),
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// WithLogger replaces the request logger.
func (s *Server) WithLogger(l *zap.Logger) *Server {
	s.logger = l
	return s
}

// URL returns the collection URL, ready for api.New.
func (s *Server) URL() string { return s.srv.URL + CollectionPath }

// Seed appends todos as if the server had created them.
func (s *Server) Seed(todos ...model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range todos {
		if t.ID == 0 {
			t.ID = s.nextID
		}
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.todos = append(s.todos, t)
	}
}

// Todos returns a copy of the stored collection, never nil.
func (s *Server) Todos() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Fail makes every request with method answer code until Reset.
func (s *Server) Fail(method string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = failure{code: code, body: `{"error":"injected"}`}
}

// Raw makes every successful request with method answer body verbatim.
func (s *Server) Raw(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[method] = body
}

// Reset clears injected failures and raw bodies.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.failures)
	clear(s.raw)
}

// Calls returns the requests received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallCount returns how many requests used method.
func (s *Server) CallCount(method string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.logRequests)
	r.Use(s.inject)

	r.Get(CollectionPath, s.list)
	r.Post(CollectionPath, s.create)
	r.Put(CollectionPath+"/{id}", s.replace)
	r.Delete(CollectionPath+"/{id}", s.delete)
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(b))

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Body: string(b)})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, failing := s.failures[r.Method]
		raw, hasRaw := s.raw[r.Method]
		s.mu.Unlock()

		switch {
		case failing:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.code)
			io.WriteString(w, f.body)
		case hasRaw:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, raw)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Todos())
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := d.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	t := model.Todo{ID: s.nextID, Task: d.Task, IsComplete: d.IsComplete}
	s.nextID++
	s.todos = append(s.todos, t)
	s.mu.Unlock()

	w.Header().Set("Location", CollectionPath+"/"+strconv.FormatInt(t.ID, 10))
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var t model.Todo
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if t.ID != id {
		writeError(w, http.StatusBadRequest, "id mismatch")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.todos[i] = t
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.todos = slices.Delete(s.todos, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

// indexOf expects s.mu held.
func (s *Server) indexOf(id int64) int {
	return slices.IndexFunc(s.todos, func(t model.Todo) bool { return t.ID == id })
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
