package store

// Action describes a state transition. Type is always namespaced by the
// owning resource, e.g. "WIDGET_$QUERY".
type Action struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Reducer folds an action into state. It must not mutate its input.
type Reducer func(state State, action Action) State

// Dispatcher receives actions. *Store implements it.
type Dispatcher interface {
	Dispatch(action Action)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(action Action)

// Dispatch calls f(action).
func (f DispatcherFunc) Dispatch(action Action) {
	f(action)
}
