package resource

import (
	"strings"

	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

// AsyncAction declares an action backed by a request. Either URL and Method,
// or Request, must be set.
type AsyncAction struct {
	Name    string
	Reducer store.Reducer

	// URL may contain :param placeholders filled from the payload.
	URL    string
	Method string

	// Header is merged over the resource's default headers for this action.
	Header map[string]string

	// Request replaces the default HTTP request function.
	Request RequestFunc
}

type defaultAction struct {
	name   string
	suffix string
	method string
}

var defaultActions = []defaultAction{
	{ActionQuery, "", transport.MethodGet},
	{ActionGet, "/:id", transport.MethodGet},
	{ActionCreate, "", transport.MethodPost},
	{ActionUpdate, "/:id", transport.MethodPatch},
	{ActionDelete, "/:id", transport.MethodDelete},
}

// RegisterAsync adds a request function and a reducer for a.Name. The
// reducer is only added when the action has none yet; the request function
// is always (re)built.
func (r *Resource) RegisterAsync(a AsyncAction) error {
	if strings.TrimSpace(a.Name) == "" {
		return &ArgumentError{Op: "register async", Arg: "name"}
	}
	if a.Reducer == nil {
		return &ArgumentError{Op: "register async", Arg: "reducer"}
	}

	typ := r.ActionType(a.Name)

	fn := a.Request
	if fn == nil {
		if a.URL == "" || a.Method == "" {
			return &ConfigurationError{
				Op:     "register async",
				Action: typ,
				Reason: "either url and method or a request function is required",
			}
		}
		fn = r.newRequestFunc(a.URL, a.Method, a.Header)
	}

	r.mu.Lock()
	if kind, ok := r.kinds[typ]; ok && kind == kindSync {
		r.mu.Unlock()
		return &ConfigurationError{
			Op:     "register async",
			Action: typ,
			Reason: "already registered as a synchronous action",
		}
	}
	r.requests[typ] = fn
	r.kinds[typ] = kindAsync
	r.mu.Unlock()

	r.addReducer(a.Name, a.Reducer, kindAsync)

	r.logger.Debug("async action registered", "type", typ, "method", a.Method, "url", a.URL)
	return nil
}

// MustRegisterAsync is like RegisterAsync but panics on error.
func (r *Resource) MustRegisterAsync(a AsyncAction) *Resource {
	if err := r.RegisterAsync(a); err != nil {
		panic(err)
	}
	return r
}

// RegisterSync adds a reducer for a purely local action.
func (r *Resource) RegisterSync(name string, reducer store.Reducer) error {
	if strings.TrimSpace(name) == "" {
		return &ArgumentError{Op: "register sync", Arg: "name"}
	}
	if reducer == nil {
		return &ArgumentError{Op: "register sync", Arg: "reducer"}
	}

	typ := r.ActionType(name)

	r.mu.RLock()
	_, hasRequest := r.requests[typ]
	r.mu.RUnlock()
	if hasRequest {
		return &ConfigurationError{
			Op:     "register sync",
			Action: typ,
			Reason: "already registered as an asynchronous action",
		}
	}

	r.addReducer(name, reducer, kindSync)
	r.logger.Debug("sync action registered", "type", typ)
	return nil
}

// MustRegisterSync is like RegisterSync but panics on error.
func (r *Resource) MustRegisterSync(name string, reducer store.Reducer) *Resource {
	if err := r.RegisterSync(name, reducer); err != nil {
		panic(err)
	}
	return r
}

// RegisterDefaultActions registers $QUERY, $GET, $CREATE, $UPDATE and
// $DELETE against the base URL. Calling it again changes nothing.
func (r *Resource) RegisterDefaultActions() error {
	if r.url == "" {
		return &ConfigurationError{
			Op:     "register default actions",
			Action: r.prefix + "*",
			Reason: "resource has no url",
		}
	}

	for _, d := range defaultActions {
		err := r.RegisterAsync(AsyncAction{
			Name:    d.name,
			URL:     r.url + d.suffix,
			Method:  d.method,
			Reducer: r.defaultReducer(d.name),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// MustRegisterDefaultActions is like RegisterDefaultActions but panics on
// error.
func (r *Resource) MustRegisterDefaultActions() *Resource {
	if err := r.RegisterDefaultActions(); err != nil {
		panic(err)
	}
	return r
}

// UpdateReducerAction replaces the reducer for name.
func (r *Resource) UpdateReducerAction(name string, reducer store.Reducer) error {
	if strings.TrimSpace(name) == "" {
		return &ArgumentError{Op: "update reducer", Arg: "name"}
	}
	if reducer == nil {
		return &ArgumentError{Op: "update reducer", Arg: "reducer"}
	}

	typ := r.ActionType(name)
	r.mu.Lock()
	r.reducers[typ] = reducer
	if _, ok := r.kinds[typ]; !ok {
		r.kinds[typ] = kindSync
	}
	r.mu.Unlock()
	return nil
}

// MustUpdateReducerAction is like UpdateReducerAction but panics on error.
func (r *Resource) MustUpdateReducerAction(name string, reducer store.Reducer) *Resource {
	if err := r.UpdateReducerAction(name, reducer); err != nil {
		panic(err)
	}
	return r
}

// UpdateResourceAction replaces the request function for name.
func (r *Resource) UpdateResourceAction(name string, fn RequestFunc) error {
	if strings.TrimSpace(name) == "" {
		return &ArgumentError{Op: "update resource action", Arg: "name"}
	}
	if fn == nil {
		return &ArgumentError{Op: "update resource action", Arg: "request function"}
	}

	typ := r.ActionType(name)
	r.mu.Lock()
	r.requests[typ] = fn
	r.kinds[typ] = kindAsync
	r.mu.Unlock()
	return nil
}

// MustUpdateResourceAction is like UpdateResourceAction but panics on error.
func (r *Resource) MustUpdateResourceAction(name string, fn RequestFunc) *Resource {
	if err := r.UpdateResourceAction(name, fn); err != nil {
		panic(err)
	}
	return r
}

func (r *Resource) defaultReducer(name string) store.Reducer {
	switch name {
	case ActionQuery:
		return ReplaceAll
	case ActionDelete:
		if r.deleteMode == DeleteSourceCompat {
			return RemoveByIDCompat
		}
		return RemoveByID
	default:
		return Upsert
	}
}
