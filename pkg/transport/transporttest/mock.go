package transporttest

import (
	"context"
	"net/http"
	"sync"

	"github.com/vango-dev/ducks/pkg/transport"
)

// Handler answers one mocked route.
type Handler func(req *transport.Request) (*transport.Response, error)

// Mock is a transport.Sender that answers from registered routes and
// records every request it sees.
type Mock struct {
	mu     sync.Mutex
	routes map[string]Handler
	calls  []transport.Request
}

// New creates an empty mock.
func New() *Mock {
	return &Mock{routes: make(map[string]Handler)}
}

// On registers a handler for method and path.
func (m *Mock) On(method, path string, h Handler) *Mock {
	m.mu.Lock()
	m.routes[routeKey(method, path)] = h
	m.mu.Unlock()
	return m
}

// Reply registers a fixed response. OK is derived from status.
func (m *Mock) Reply(method, path string, status int, body any) *Mock {
	return m.On(method, path, func(*transport.Request) (*transport.Response, error) {
		return &transport.Response{
			OK:         transport.StatusOK(status),
			StatusCode: status,
			Body:       body,
		}, nil
	})
}

// Fail registers a route whose request never completes.
func (m *Mock) Fail(method, path string, err error) *Mock {
	return m.On(method, path, func(*transport.Request) (*transport.Response, error) {
		return nil, err
	})
}

// Get is shorthand for On("GET", path, h).
func (m *Mock) Get(path string, h Handler) *Mock { return m.On(http.MethodGet, path, h) }

// Post is shorthand for On("POST", path, h).
func (m *Mock) Post(path string, h Handler) *Mock { return m.On(http.MethodPost, path, h) }

// Patch is shorthand for On("PATCH", path, h).
func (m *Mock) Patch(path string, h Handler) *Mock { return m.On(http.MethodPatch, path, h) }

// Put is shorthand for On("PUT", path, h).
func (m *Mock) Put(path string, h Handler) *Mock { return m.On(http.MethodPut, path, h) }

// Delete is shorthand for On("DELETE", path, h).
func (m *Mock) Delete(path string, h Handler) *Mock { return m.On(http.MethodDelete, path, h) }

// Send implements transport.Sender. Unmatched routes get a 404 response.
func (m *Mock) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cloneRequest(req))
	h, ok := m.routes[routeKey(req.Method, req.Path())]
	m.mu.Unlock()

	if ctx != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if !ok {
		return &transport.Response{
			StatusCode: http.StatusNotFound,
			Body:       map[string]any{"error": "no mock for " + routeKey(req.Method, req.Path())},
		}, nil
	}
	return h(req)
}

// Calls returns the requests seen so far, oldest first.
func (m *Mock) Calls() []transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transport.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent request, or false when there is none.
func (m *Mock) LastCall() (transport.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return transport.Request{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// Reset forgets recorded calls. Routes are kept.
func (m *Mock) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

func routeKey(method, path string) string {
	return transport.NormalizeMethod(method) + " " + path
}

func cloneRequest(req *transport.Request) transport.Request {
	out := *req
	if req.Header != nil {
		out.Header = transport.MergeHeaders(req.Header, nil)
	}
	return out
}
