package resource

import (
	"log/slog"

	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

// Option configures a Resource at construction.
type Option func(*Resource)

// WithURL sets the base URL used by the default actions.
func WithURL(url string) Option {
	return func(r *Resource) {
		r.url = url
	}
}

// WithHeaders sets headers merged into every request the resource builds.
func WithHeaders(headers map[string]string) Option {
	return func(r *Resource) {
		r.headers = transport.MergeHeaders(nil, headers)
	}
}

// WithState sets the initial data.
func WithState(data []store.Entity) Option {
	return func(r *Resource) {
		r.initial = store.NewState(data)
	}
}

// WithSender replaces the default HTTP sender.
func WithSender(sender transport.Sender) Option {
	return func(r *Resource) {
		if sender != nil {
			r.sender = sender
		}
	}
}

// WithDispatcher binds the dispatch sink at construction. See Configure.
func WithDispatcher(d store.Dispatcher) Option {
	return func(r *Resource) {
		r.dispatcher = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resource) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDeleteMode selects what the default delete reducer does for an id
// that is not in the state.
func WithDeleteMode(mode DeleteMode) Option {
	return func(r *Resource) {
		r.deleteMode = mode
	}
}

// WithParamSearch selects how URL placeholders are looked up in payloads.
func WithParamSearch(search ParamSearch) Option {
	return func(r *Resource) {
		r.paramSearch = search
	}
}
