package store

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Listener is called after every dispatch with the action and a snapshot of
// the new root state.
type Listener func(action Action, state map[string]State)

// Store is a minimal reducer store keyed by slice name. Dispatch is
// serialized: reducers see one action at a time.
type Store struct {
	mu       sync.Mutex
	reducers map[string]Reducer
	state    map[string]State
	reduce   func(map[string]State, Action) map[string]State

	listenersMu sync.RWMutex
	listeners   map[uint64]Listener

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		reducers:  make(map[string]Reducer),
		state:     make(map[string]State),
		listeners: make(map[uint64]Listener),
		logger:    slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reduce = Combine(s.reducers)
	return s
}

// Register adds a slice with its reducer and initial state. Registering an
// existing key replaces the reducer but keeps the current state.
func (s *Store) Register(key string, reducer Reducer, initial State) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	reducers := make(map[string]Reducer, len(s.reducers)+1)
	for k, r := range s.reducers {
		reducers[k] = r
	}
	reducers[key] = reducer
	s.reducers = reducers
	s.reduce = Combine(reducers)

	if _, ok := s.state[key]; !ok {
		s.state[key] = initial
	}
	return s
}

// Dispatch applies the action to every slice, then notifies listeners.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = s.reduce(s.state, action)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("action dispatched", "type", action.Type)

	s.listenersMu.RLock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(action, snapshot)
	}
}

// State returns a snapshot of the root state.
func (s *Store) State() map[string]State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Slice returns the current state of one slice.
func (s *Store) Slice(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[key]
}

// Keys returns the registered slice names in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.reducers))
	for k := range s.reducers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	id := nextListenerID()

	s.listenersMu.Lock()
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() map[string]State {
	out := make(map[string]State, len(s.state))
	for k, v := range s.state {
		out[k] = v
	}
	return out
}

var listenerCounter uint64

func nextListenerID() uint64 {
	return atomic.AddUint64(&listenerCounter, 1)
}
