package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

// Status is the state of an async dispatch.
type Status int

const (
	Pending Status = iota
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Future tracks an async dispatch. It completes after the resulting action
// has been dispatched.
type Future struct {
	done chan struct{}

	mu     sync.Mutex
	status Status
	action store.Action
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done is closed once the result action has been dispatched.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the dispatch completes or ctx ends. It only reports
// context errors; request failures are delivered as "$ERROR" actions.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current status.
func (f *Future) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Action returns the dispatched action. It is the zero Action while pending.
func (f *Future) Action() store.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.action
}

// Err returns the request error, or nil.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Future) finish(status Status, action store.Action, err error) {
	f.mu.Lock()
	f.status = status
	f.action = action
	f.err = err
	f.mu.Unlock()
	close(f.done)
}

// DispatchAsync runs the request registered for name in a new goroutine and
// dispatches its outcome: the response body under the action's own type on
// success, and under "<NAME>_$ERROR" otherwise. When no response arrived
// (transport error, panic) the "$ERROR" data is a *RemoteRequestError.
// Future.Err always carries the full *RemoteRequestError.
//
// The returned error only covers problems detected before the request
// starts.
func (r *Resource) DispatchAsync(ctx context.Context, name string, payload any) (*Future, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ArgumentError{Op: "dispatch async", Arg: "name"}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	typ := r.ActionType(name)

	r.mu.RLock()
	dispatcher := r.dispatcher
	fn, ok := r.requests[typ]
	r.mu.RUnlock()

	if dispatcher == nil {
		return nil, &NotConfiguredError{Resource: r.name}
	}
	if !ok {
		return nil, &UnknownActionError{Resource: r.name, Action: typ}
	}

	r.logger.Debug("dispatching async action", "type", typ)

	future := newFuture()
	go func() {
		resp, err := r.run(ctx, fn, payload)
		if err == nil && resp == nil {
			err = errNoResponse
		}

		if err != nil || !resp.OK {
			failure := &RemoteRequestError{Action: typ, Err: err}
			var data any = failure
			if resp != nil {
				failure.StatusCode = resp.StatusCode
				failure.Body = resp.Body
				data = resp.Body
			}
			action := store.Action{Type: r.prefix + ActionError, Data: data}
			r.logger.Warn("async action failed", "type", typ, "status", failure.StatusCode, "error", failure)
			dispatcher.Dispatch(action)
			future.finish(Failed, action, failure)
			return
		}

		action := store.Action{Type: typ, Data: resp.Body}
		dispatcher.Dispatch(action)
		r.logger.Debug("async action succeeded", "type", typ, "status", resp.StatusCode)
		future.finish(Succeeded, action, nil)
	}()

	return future, nil
}

// run calls fn, turning a panic into an error.
func (r *Resource) run(ctx context.Context, fn RequestFunc, payload any) (resp *transport.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			resp = nil
			err = fmt.Errorf("request panicked: %v", p)
		}
	}()
	return fn(ctx, payload)
}

// DispatchSync dispatches the action for name with payload as its data.
func (r *Resource) DispatchSync(name string, payload any) error {
	if strings.TrimSpace(name) == "" {
		return &ArgumentError{Op: "dispatch sync", Arg: "name"}
	}

	r.mu.RLock()
	dispatcher := r.dispatcher
	r.mu.RUnlock()

	if dispatcher == nil {
		return &NotConfiguredError{Resource: r.name}
	}

	action := store.Action{Type: r.ActionType(name), Data: payload}
	r.logger.Debug("dispatching sync action", "type", action.Type)
	dispatcher.Dispatch(action)
	return nil
}
