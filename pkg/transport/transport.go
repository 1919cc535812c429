package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Request is a resolved outgoing request.
type Request struct {
	Method string
	URL    string

	// Query is sent for GET requests.
	Query url.Values

	// Body is JSON-encoded for POST, PATCH, PUT and DELETE.
	Body any

	Header map[string]string
}

// Path returns the path component of the request URL.
func (r *Request) Path() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	return u.Path
}

// Response is the result of a request that reached the remote side.
type Response struct {
	// OK is true for 2xx responses.
	OK         bool
	StatusCode int
	Body       any
	Header     http.Header
}

// Sender sends a request. A non-nil error means no response was obtained.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f SenderFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Supported methods.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPatch  = http.MethodPatch
	MethodPut    = http.MethodPut
	MethodDelete = http.MethodDelete
)

// SupportedMethod reports whether method is one a Sender must handle.
func SupportedMethod(method string) bool {
	switch method {
	case MethodGet, MethodPost, MethodPatch, MethodPut, MethodDelete:
		return true
	}
	return false
}

// SendsBody reports whether the payload travels in the body for method.
func SendsBody(method string) bool {
	return SupportedMethod(method) && method != MethodGet
}

// NormalizeMethod upper-cases and trims a method name.
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// MergeHeaders returns a new map with overrides applied on top of base.
func MergeHeaders(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// StatusOK reports whether code is a 2xx status.
func StatusOK(code int) bool {
	return code >= 200 && code < 300
}
