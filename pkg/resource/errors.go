package resource

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrArgument is matched by *ArgumentError.
	ErrArgument = errors.New("resource: missing argument")

	// ErrConfiguration is matched by *ConfigurationError.
	ErrConfiguration = errors.New("resource: invalid action configuration")

	// ErrNotConfigured is matched by *NotConfiguredError.
	ErrNotConfigured = errors.New("resource: dispatcher not configured")

	// ErrInvalidMethod is matched by *InvalidMethodError.
	ErrInvalidMethod = errors.New("resource: invalid request method")

	// ErrUnknownAction is matched by *UnknownActionError.
	ErrUnknownAction = errors.New("resource: unknown action")

	// ErrRemoteRequest is matched by *RemoteRequestError.
	ErrRemoteRequest = errors.New("resource: remote request failed")

	errNoResponse = errors.New("request function returned no response")
)

// ArgumentError reports a required argument that was empty.
type ArgumentError struct {
	Op  string
	Arg string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("resource: %s: %s is required", e.Op, e.Arg)
}

// Is reports whether target is ErrArgument.
func (e *ArgumentError) Is(target error) bool { return target == ErrArgument }

// ConfigurationError reports an action definition that cannot be registered.
type ConfigurationError struct {
	Op     string
	Action string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("resource: %s %s: %s", e.Op, e.Action, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NotConfiguredError is returned by dispatch calls made before Configure.
type NotConfiguredError struct {
	Resource string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("resource: %s: no dispatcher configured", e.Resource)
}

// Is reports whether target is ErrNotConfigured.
func (e *NotConfiguredError) Is(target error) bool { return target == ErrNotConfigured }

// InvalidMethodError reports an HTTP method the transport contract does not
// cover.
type InvalidMethodError struct {
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("resource: invalid request method %q", e.Method)
}

// Is reports whether target is ErrInvalidMethod.
func (e *InvalidMethodError) Is(target error) bool { return target == ErrInvalidMethod }

// UnknownActionError is returned by DispatchAsync when no request function
// is registered for the action.
type UnknownActionError struct {
	Resource string
	Action   string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("resource: %s: unknown action %s", e.Resource, e.Action)
}

// Is reports whether target is ErrUnknownAction.
func (e *UnknownActionError) Is(target error) bool { return target == ErrUnknownAction }

// RemoteRequestError describes a failed request. It is reported by
// Future.Err, and is the Data of the "$ERROR" action when no response
// arrived.
type RemoteRequestError struct {
	// Action is the action type whose request failed.
	Action string

	// StatusCode is zero when no response was received.
	StatusCode int

	// Body is the response body, if any.
	Body any

	// Err is the transport error, if any.
	Err error
}

func (e *RemoteRequestError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("resource: %s: %v", e.Action, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("resource: %s: remote returned status %d", e.Action, e.StatusCode)
	default:
		return fmt.Sprintf("resource: %s: remote request failed", e.Action)
	}
}

// Unwrap returns the transport error.
func (e *RemoteRequestError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRemoteRequest.
func (e *RemoteRequestError) Is(target error) bool { return target == ErrRemoteRequest }

// MarshalJSON renders the error for stores that serialize state.
func (e *RemoteRequestError) MarshalJSON() ([]byte, error) {
	out := struct {
		Action  string `json:"action"`
		Status  int    `json:"status,omitempty"`
		Body    any    `json:"body,omitempty"`
		Message string `json:"message"`
	}{
		Action:  e.Action,
		Status:  e.StatusCode,
		Body:    e.Body,
		Message: e.Error(),
	}
	return json.Marshal(out)
}
