package ducks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/ducks/internal/mockapi"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// harness binds a widget resource to a store over a live mock backend.
type harness struct {
	store   *Store
	widgets *Resource
	api     *mockapi.Server

	mu      sync.Mutex
	headers []http.Header
}

func newHarness(t *testing.T, seed []map[string]any, opts ...Option) *harness {
	t.Helper()
	h := &harness{api: mockapi.New(mockapi.WithLogger(quietLogger()))}
	h.api.Add("/widgets", seed)

	backend := h.api.Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.headers = append(h.headers, r.Header.Clone())
		h.mu.Unlock()
		backend.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	h.store = NewStore()
	opts = append([]Option{WithURL(srv.URL + "/widgets"), WithLogger(quietLogger())}, opts...)
	h.widgets = MustNew("widget", opts...).MustRegisterDefaultActions()
	h.store.Register("widget", h.widgets.Reducer(), h.widgets.InitialState())
	h.widgets.Configure(h.store)
	return h
}

func (h *harness) dispatch(t *testing.T, name string, payload any) *Future {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	f, err := h.widgets.DispatchAsync(ctx, name, payload)
	if err != nil {
		t.Fatalf("DispatchAsync(%s): %v", name, err)
	}
	if err := f.Wait(ctx); err != nil {
		t.Fatalf("Wait(%s): %v", name, err)
	}
	return f
}

func (h *harness) state() State {
	return h.store.Slice("widget")
}

func TestCRUDLifecycle(t *testing.T) {
	h := newHarness(t, []map[string]any{
		{"id": float64(1), "name": "gear"},
		{"id": float64(2), "name": "cog"},
		{"id": float64(3), "name": "wheel"},
	})

	h.dispatch(t, "$QUERY", nil)
	if got := h.state(); len(got.Data) != 3 || len(got.Errors) != 0 {
		t.Fatalf("after query: %+v", got)
	}

	f := h.dispatch(t, "$CREATE", map[string]any{"name": "sprocket"})
	if f.Status() != Succeeded {
		t.Fatalf("create status = %v, err = %v", f.Status(), f.Err())
	}
	data := h.state().Data
	if len(data) != 4 || data[3]["name"] != "sprocket" || data[3]["id"] != float64(4) {
		t.Fatalf("after create: %v", data)
	}

	h.dispatch(t, "$UPDATE", map[string]any{"id": 1, "name": "big gear"})
	data = h.state().Data
	if len(data) != 4 {
		t.Fatalf("update changed length: %v", data)
	}
	if last := data[3]; last["id"] != float64(1) || last["name"] != "big gear" {
		t.Errorf("updated entity not appended last: %v", data)
	}

	h.dispatch(t, "$DELETE", map[string]any{"id": 2})
	data = h.state().Data
	if len(data) != 3 {
		t.Fatalf("after delete: %v", data)
	}
	for _, e := range data {
		if e.ID() == float64(2) {
			t.Errorf("id 2 still present: %v", data)
		}
	}

	h.dispatch(t, "$GET", map[string]any{"id": 3})
	data = h.state().Data
	if len(data) != 3 || data[2]["id"] != float64(3) {
		t.Errorf("after get: %v", data)
	}

	c, _ := h.api.Collection("/widgets")
	if c.Len() != 3 {
		t.Errorf("backend has %d items, want 3", c.Len())
	}
}

func TestRemoteErrorThenClear(t *testing.T) {
	h := newHarness(t, nil)

	f := h.dispatch(t, "$GET", map[string]any{"id": 99})
	if f.Status() != Failed {
		t.Fatalf("status = %v, want failed", f.Status())
	}
	if f.Action().Type != "WIDGET_$ERROR" {
		t.Errorf("dispatched %q, want WIDGET_$ERROR", f.Action().Type)
	}

	st := h.state()
	if len(st.Errors) != 1 {
		t.Fatalf("errors = %v, want one", st.Errors)
	}
	body, ok := st.Errors[0].(map[string]any)
	if !ok || body["error"] != "no item with id 99" {
		t.Errorf("error entry = %#v, want the backend's error body", st.Errors[0])
	}
	var remote *RemoteRequestError
	if !errors.As(f.Err(), &remote) || remote.StatusCode != http.StatusNotFound {
		t.Errorf("Err() = %v, want 404 RemoteRequestError", f.Err())
	}

	if err := h.widgets.DispatchSync("$CLEAR_ERRORS", nil); err != nil {
		t.Fatal(err)
	}
	if st := h.state(); len(st.Errors) != 0 {
		t.Errorf("errors after clear = %v", st.Errors)
	}
}

func TestHeadersReachBackend(t *testing.T) {
	h := newHarness(t, nil, WithHeaders(map[string]string{"X-Api-Key": "secret"}))

	h.dispatch(t, "$QUERY", nil)

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.headers) != 1 {
		t.Fatalf("backend saw %d requests, want 1", len(h.headers))
	}
	if got := h.headers[0].Get("X-Api-Key"); got != "secret" {
		t.Errorf("X-Api-Key = %q, want secret", got)
	}
}

func TestQueryFilterFromPayload(t *testing.T) {
	h := newHarness(t, []map[string]any{
		{"id": float64(1), "color": "red"},
		{"id": float64(2), "color": "blue"},
	})

	h.dispatch(t, "$QUERY", map[string]any{"color": "blue"})
	data := h.state().Data
	if len(data) != 1 || data[0]["id"] != float64(2) {
		t.Errorf("filtered query = %v", data)
	}
}

func TestCustomAsyncAction(t *testing.T) {
	h := newHarness(t, []map[string]any{{"id": float64(5), "name": "gear"}})

	h.widgets.MustRegisterAsync(AsyncAction{
		Name:    "$RENAME",
		Reducer: Upsert,
		URL:     h.widgets.URL() + "/:id",
		Method:  http.MethodPut,
	})

	h.dispatch(t, "$RENAME", map[string]any{"widget": map[string]any{"id": 5}, "name": "cog"})
	data := h.state().Data
	if len(data) != 1 || data[0]["id"] != float64(5) {
		t.Errorf("after rename: %v", data)
	}
}

func TestStoreWithoutResource(t *testing.T) {
	s := NewStore()
	var seen []string
	s.Subscribe(func(a Action, _ map[string]State) { seen = append(seen, a.Type) })

	s.Register("things", func(st State, a Action) State {
		if a.Type == "THINGS_ADD" {
			return Upsert(st, a)
		}
		return st
	}, State{})

	s.Dispatch(Action{Type: "THINGS_ADD", Data: map[string]any{"id": 1}})
	if got := s.Slice("things").Data; len(got) != 1 {
		t.Errorf("data = %v", got)
	}
	if len(seen) != 1 || seen[0] != "THINGS_ADD" {
		t.Errorf("listener saw %v", seen)
	}
}
