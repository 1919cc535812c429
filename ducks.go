// Package ducks generates CRUD bindings between remote REST collections and
// a reducer store.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/ducks"
//
// Usage:
//
//	widgets := ducks.MustNew("widget",
//	    ducks.WithURL("http://localhost:4000/widgets"),
//	    ducks.WithHeaders(map[string]string{"Authorization": "Bearer " + token}),
//	).MustRegisterDefaultActions()
//
//	s := ducks.NewStore()
//	s.Register("widget", widgets.Reducer(), widgets.InitialState())
//	widgets.Configure(s)
//
//	f, err := widgets.DispatchAsync(ctx, "$QUERY", nil)
//	if err != nil {
//	    return err
//	}
//	f.Wait(ctx)
//	fmt.Println(s.Slice("widget").Data)
package ducks

import (
	"github.com/vango-dev/ducks/pkg/resource"
	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

// =============================================================================
// Store types (re-export from pkg/store)
// =============================================================================

// Action is a typed message folded into state by reducers.
type Action = store.Action

// State is a resource's {data, errors} value.
type State = store.State

// Entity is one JSON object of a collection, identified by its "id".
type Entity = store.Entity

// Reducer computes the next state for an action.
type Reducer = store.Reducer

// Dispatcher receives the actions a resource produces.
type Dispatcher = store.Dispatcher

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc = store.DispatcherFunc

// Store is the reference reducer store.
type Store = store.Store

// NewStore creates an empty store.
func NewStore(opts ...store.Option) *Store {
	return store.New(opts...)
}

// =============================================================================
// Resources (re-export from pkg/resource)
// =============================================================================

// Resource is a named remote collection bound to a dispatcher.
type Resource = resource.Resource

// Option configures a Resource.
type Option = resource.Option

// AsyncAction describes a request-backed action.
type AsyncAction = resource.AsyncAction

// RequestFunc performs the request behind an async action.
type RequestFunc = resource.RequestFunc

// Future tracks an async dispatch.
type Future = resource.Future

// Status is the state of a Future.
type Status = resource.Status

// Future states.
const (
	Pending   = resource.Pending
	Succeeded = resource.Succeeded
	Failed    = resource.Failed
)

// New creates a resource. See resource.New.
func New(name string, opts ...Option) (*Resource, error) {
	return resource.New(name, opts...)
}

// MustNew is like New but panics on error.
func MustNew(name string, opts ...Option) *Resource {
	return resource.MustNew(name, opts...)
}

// Resource options.
var (
	WithURL         = resource.WithURL
	WithHeaders     = resource.WithHeaders
	WithState       = resource.WithState
	WithSender      = resource.WithSender
	WithDispatcher  = resource.WithDispatcher
	WithLogger      = resource.WithLogger
	WithDeleteMode  = resource.WithDeleteMode
	WithParamSearch = resource.WithParamSearch
)

// Default reducers.
var (
	ReplaceAll  = resource.ReplaceAll
	Upsert      = resource.Upsert
	RemoveByID  = resource.RemoveByID
	SetError    = resource.SetError
	ClearErrors = resource.ClearErrors
)

// =============================================================================
// Errors (re-export from pkg/resource)
// =============================================================================

var (
	ErrArgument      = resource.ErrArgument
	ErrConfiguration = resource.ErrConfiguration
	ErrNotConfigured = resource.ErrNotConfigured
	ErrInvalidMethod = resource.ErrInvalidMethod
	ErrUnknownAction = resource.ErrUnknownAction
	ErrRemoteRequest = resource.ErrRemoteRequest
)

// RemoteRequestError describes a failed request. See Future.Err.
type RemoteRequestError = resource.RemoteRequestError

// =============================================================================
// Transport (re-export from pkg/transport)
// =============================================================================

// Sender performs requests for resources.
type Sender = transport.Sender

// NewHTTPSender creates the default net/http sender.
func NewHTTPSender(opts ...transport.HTTPOption) *transport.HTTPSender {
	return transport.NewHTTPSender(opts...)
}
