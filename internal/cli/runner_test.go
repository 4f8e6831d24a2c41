package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/apitest"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/view"
)

type harness struct {
	srv      *apitest.Server
	runner   *Runner
	out, err *bytes.Buffer
}

func newHarness(t *testing.T, seed ...model.Todo) *harness {
	t.Helper()
	srv := apitest.New(t)
	srv.Seed(seed...)
	c, err := api.New(srv.URL())
	require.NoError(t, err)

	h := &harness{srv: srv, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.runner = &Runner{Remote: c, Out: h.out, Err: h.err}
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.err.Reset()
	return h.runner.Run(context.Background(), args)
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, 2},
		{"help", []string{"help"}, 0},
		{"unknown", []string{"frobnicate"}, 2},
		{"add without task", []string{"add"}, 2},
		{"done without id", []string{"done"}, 2},
		{"done bad id", []string{"done", "x"}, 2},
		{"done negative id", []string{"done", "-1"}, 2},
		{"edit without task", []string{"edit", "1"}, 2},
		{"rm extra args", []string{"rm", "1", "2"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, h.run(tt.args...))
		})
	}
	assert.Empty(t, h.srv.Calls(), "usage errors never reach the server")
}

func TestRun_HelpMentionsSubcommands(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("help"))
	for _, sub := range []string{"ls", "list", "add", "done", "edit", "rm"} {
		assert.Contains(t, h.out.String(), "  "+sub+" ")
	}
}

func TestRun_List(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 1, Task: "Buy milk"}, model.Todo{ID: 2, Task: "Walk dog", IsComplete: true})

	require.Equal(t, 0, h.run("list"))
	out := h.out.String()
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "50%")
}

func TestRun_ListGrouped(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 1, Task: "a", IsComplete: true}, model.Todo{ID: 2, Task: "b"})
	h.runner.Group = true

	require.Equal(t, 0, h.run("list"))
	out := h.out.String()
	assert.Less(t, bytes.Index([]byte(out), []byte("Pending")), bytes.Index([]byte(out), []byte("Done")))
}

func TestRun_ListFailure(t *testing.T) {
	h := newHarness(t)
	h.srv.Fail(http.MethodGet, http.StatusInternalServerError)

	assert.Equal(t, 1, h.run("list"))
	assert.Contains(t, h.err.String(), "load:")
}

func TestRun_Add(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 6, Task: "old"})

	require.Equal(t, 0, h.run("add", " Buy", "milk "))
	assert.Contains(t, h.out.String(), "added #7")
	assert.Equal(t, []model.Todo{{ID: 6, Task: "old"}, {ID: 7, Task: "Buy milk"}}, h.srv.Todos())
}

func TestRun_AddBlank(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.run("add", "  "))
	assert.Contains(t, h.err.String(), "empty task")
	assert.Zero(t, h.srv.CallCount(http.MethodPost))
}

func TestRun_AddFailure(t *testing.T) {
	h := newHarness(t)
	h.srv.Fail(http.MethodPost, http.StatusBadRequest)

	assert.Equal(t, 1, h.run("add", "x"))
	assert.Contains(t, h.err.String(), "400")
	assert.Empty(t, h.srv.Todos())
}

func TestRun_Done(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 3, Task: "c"})

	require.Equal(t, 0, h.run("done", "3"))
	assert.Contains(t, h.out.String(), "#3 marked done")
	assert.True(t, h.srv.Todos()[0].IsComplete)

	require.Equal(t, 0, h.run("done", "3"))
	assert.Contains(t, h.out.String(), "#3 marked pending")
	assert.False(t, h.srv.Todos()[0].IsComplete)
}

func TestRun_DoneFailure(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 3, Task: "c"})
	h.srv.Fail(http.MethodPut, http.StatusInternalServerError)

	assert.Equal(t, 1, h.run("done", "3"))
	assert.False(t, h.srv.Todos()[0].IsComplete)
}

func TestRun_UnknownID(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 3, Task: "c"})

	for _, args := range [][]string{{"done", "9"}, {"edit", "9", "x"}, {"rm", "9"}} {
		assert.Equal(t, 2, h.run(args...), args)
		assert.Contains(t, h.err.String(), "unknown id: 9")
		assert.Contains(t, h.err.String(), "Hint:")
	}
	assert.Zero(t, h.srv.CallCount(http.MethodPut))
	assert.Zero(t, h.srv.CallCount(http.MethodDelete))
}

func TestRun_Edit(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 4, Task: "old", IsComplete: true})

	require.Equal(t, 0, h.run("edit", "4", "new", "text"))
	assert.Contains(t, h.out.String(), "#4 updated")
	assert.Equal(t, []model.Todo{{ID: 4, Task: "new text", IsComplete: true}}, h.srv.Todos())
}

func TestRun_EditUnchanged(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 4, Task: "same"})

	require.Equal(t, 0, h.run("edit", "4", " same "))
	assert.Contains(t, h.out.String(), "unchanged")
	assert.Zero(t, h.srv.CallCount(http.MethodPut))
}

func TestRun_EditBlank(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 4, Task: "x"})

	assert.Equal(t, 2, h.run("edit", "4", " "))
	assert.Empty(t, h.srv.Calls())
}

func TestRun_Remove(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 5, Task: "e"}, model.Todo{ID: 6, Task: "f"})

	require.Equal(t, 0, h.run("rm", "5"))
	assert.Contains(t, h.out.String(), "#5 removed")
	assert.Equal(t, []model.Todo{{ID: 6, Task: "f"}}, h.srv.Todos())
}

func TestRun_RemoveFailure(t *testing.T) {
	h := newHarness(t, model.Todo{ID: 5, Task: "e"})
	h.srv.Fail(http.MethodDelete, http.StatusInternalServerError)

	assert.Equal(t, 1, h.run("rm", "5"))
	assert.Len(t, h.srv.Todos(), 1)
}

func TestRun_Interactive(t *testing.T) {
	h := newHarness(t)
	var called bool
	h.runner.Interactive = func(ctx context.Context, r view.Remote, l *log.Logger) error {
		called = true
		assert.Same(t, h.runner.Remote, r)
		return nil
	}
	assert.Equal(t, 0, h.run("ls"))
	assert.True(t, called)

	h.runner.Interactive = func(context.Context, view.Remote, *log.Logger) error {
		return errors.New("no terminal")
	}
	assert.Equal(t, 1, h.run("ls"))
	assert.Contains(t, h.err.String(), "no terminal")
}

func TestStartMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := api.NewMetrics(reg)

	srv := apitest.New(t)
	c, err := api.New(srv.URL(), api.WithMetrics(m))
	require.NoError(t, err)
	_, err = c.List(context.Background())
	require.NoError(t, err)

	ms, err := StartMetrics("127.0.0.1:0", reg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ms.Close(context.Background()) })

	resp, err := http.Get("http://" + ms.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `todo_client_requests_total{code="200",method="get"} 1`)
}

func TestStartMetrics_BadAddr(t *testing.T) {
	_, err := StartMetrics("256.0.0.1:bad", prometheus.NewRegistry(), nil)
	assert.Error(t, err)
}
