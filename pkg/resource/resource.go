package resource

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

// Built-in action names. Default actions are registered by
// RegisterDefaultActions; the error actions exist from construction.
const (
	ActionQuery       = "$QUERY"
	ActionGet         = "$GET"
	ActionCreate      = "$CREATE"
	ActionUpdate      = "$UPDATE"
	ActionDelete      = "$DELETE"
	ActionError       = "$ERROR"
	ActionClearErrors = "$CLEAR_ERRORS"
)

// RequestFunc produces the response for an async action. It may talk to a
// remote server or anything else.
type RequestFunc func(ctx context.Context, payload any) (*transport.Response, error)

type actionKind int

const (
	kindSync actionKind = iota
	kindAsync
)

// Resource is the registry, reducer and dispatcher for one entity type.
type Resource struct {
	name    string
	prefix  string
	url     string
	headers map[string]string
	initial store.State

	mu         sync.RWMutex
	reducers   map[string]store.Reducer
	requests   map[string]RequestFunc
	kinds      map[string]actionKind
	dispatcher store.Dispatcher

	sender      transport.Sender
	logger      *slog.Logger
	deleteMode  DeleteMode
	paramSearch ParamSearch
}

// New creates a resource. The name is upper-cased and prefixes every action
// type the resource owns.
func New(name string, opts ...Option) (*Resource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ArgumentError{Op: "new", Arg: "name"}
	}

	upper := strings.ToUpper(name)
	r := &Resource{
		name:     upper,
		prefix:   upper + "_",
		headers:  map[string]string{},
		initial:  store.NewState(nil),
		reducers: make(map[string]store.Reducer),
		requests: make(map[string]RequestFunc),
		kinds:    make(map[string]actionKind),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "resource", "resource", upper)
	}
	if r.sender == nil {
		r.sender = transport.NewHTTPSender(transport.WithLogger(r.logger))
	}

	r.addReducer(ActionError, SetError, kindSync)
	r.addReducer(ActionClearErrors, ClearErrors, kindSync)

	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, opts ...Option) *Resource {
	r, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Configure binds the dispatch sink. It replaces any previous sink.
func (r *Resource) Configure(d store.Dispatcher) *Resource {
	r.mu.Lock()
	r.dispatcher = d
	r.mu.Unlock()
	return r
}

// Name returns the upper-cased resource name.
func (r *Resource) Name() string { return r.name }

// Prefix returns the action type prefix, "<NAME>_".
func (r *Resource) Prefix() string { return r.prefix }

// URL returns the base URL.
func (r *Resource) URL() string { return r.url }

// Headers returns a copy of the default headers.
func (r *Resource) Headers() map[string]string {
	return transport.MergeHeaders(r.headers, nil)
}

// ActionType returns the namespaced type for an action name.
func (r *Resource) ActionType(name string) string {
	return r.prefix + strings.ToUpper(name)
}

// InitialState returns the state the resource starts from.
func (r *Resource) InitialState() store.State {
	return r.initial.Clone()
}

// Reduce folds action into state. Actions owned by other resources return
// state unchanged. A zero State is treated as "no state yet" and replaced
// with the initial state.
func (r *Resource) Reduce(state store.State, action store.Action) store.State {
	if state.Data == nil && state.Errors == nil {
		state = r.InitialState()
	}

	r.mu.RLock()
	fn, ok := r.reducers[action.Type]
	r.mu.RUnlock()

	if !ok {
		return state
	}
	return fn(state, action)
}

// Reducer returns Reduce as a store.Reducer.
func (r *Resource) Reducer() store.Reducer {
	return r.Reduce
}

// RequestActions returns the action types that have a request function.
func (r *Resource) RequestActions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.requests))
	for k := range r.requests {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ReducerActions returns the action types that have a reducer.
func (r *Resource) ReducerActions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.reducers))
	for k := range r.reducers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// addReducer stores fn unless the type already has a reducer.
func (r *Resource) addReducer(name string, fn store.Reducer, kind actionKind) {
	typ := r.ActionType(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reducers[typ]; ok {
		return
	}
	r.reducers[typ] = fn
	if _, ok := r.kinds[typ]; !ok {
		r.kinds[typ] = kind
	}
}
