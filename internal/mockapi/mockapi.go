package mockapi

import (
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

// Server serves a set of collections over HTTP.
type Server struct {
	mu          sync.RWMutex
	collections map[string]*Collection
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server with no collections.
func New(opts ...Option) *Server {
	s := &Server{
		collections: make(map[string]*Collection),
		logger:      slog.Default().With("component", "mockapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add mounts a collection seeded with seed at path ("/widgets"). Adding an
// existing path replaces its collection.
func (s *Server) Add(path string, seed []map[string]any) *Collection {
	c := NewCollection(seed)
	s.mu.Lock()
	s.collections[normalizePath(path)] = c
	s.mu.Unlock()
	return c
}

// Collection returns the collection mounted at path.
func (s *Server) Collection(path string) (*Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[normalizePath(path)]
	return c, ok
}

// Paths returns the mounted paths in sorted order.
func (s *Server) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.collections))
	for p := range s.collections {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Handler returns a router serving every collection added so far.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no collection at "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	})
	s.Mount(r)
	return r
}

// Mount registers the collection routes on an existing router.
func (s *Server) Mount(r chi.Router) {
	for _, path := range s.Paths() {
		c, _ := s.Collection(path)
		r.Route(path, func(r chi.Router) {
			r.Get("/", s.list(c))
			r.Post("/", s.create(c))
			r.Get("/{id}", s.get(c))
			r.Patch("/{id}", s.update(c))
			r.Put("/{id}", s.replace(c))
			r.Delete("/{id}", s.delete(c))
		})
	}
}

func (s *Server) list(c *Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := make(map[string]string)
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				filter[k] = v[0]
			}
		}
		writeJSON(w, http.StatusOK, c.List(filter))
	}
}

func (s *Server) get(c *Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		item, ok := c.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "no item with id "+id)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) create(c *Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readObject(w, r)
		if !ok {
			return
		}
		item, ok := c.Create(body)
		if !ok {
			writeError(w, http.StatusConflict, "duplicate id")
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func (s *Server) update(c *Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readObject(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		item, ok := c.Update(id, body)
		if !ok {
			writeError(w, http.StatusNotFound, "no item with id "+id)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) replace(c *Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readObject(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		item, ok := c.Replace(id, body)
		if !ok {
			writeError(w, http.StatusNotFound, "no item with id "+id)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) delete(c *Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		item, ok := c.Delete(id)
		if !ok {
			writeError(w, http.StatusNotFound, "no item with id "+id)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// readObject decodes a JSON object body. An empty body is an empty object.
func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	body := make(map[string]any)
	if len(strings.TrimSpace(string(data))) == 0 {
		return body, true
	}
	if err := json.Unmarshal(data, &body); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object")
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func normalizePath(path string) string {
	return "/" + strings.Trim(path, "/")
}
