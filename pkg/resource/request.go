package resource

import (
	"context"

	"github.com/vango-dev/ducks/pkg/transport"
)

// BuildRequest resolves a URL template against payload and places the
// payload in the query (GET) or the body (POST, PATCH, PUT, DELETE).
func BuildRequest(urlTemplate, method string, payload any, header map[string]string, search ParamSearch) (*transport.Request, error) {
	m := transport.NormalizeMethod(method)
	if !transport.SupportedMethod(m) {
		return nil, &InvalidMethodError{Method: method}
	}

	req := &transport.Request{
		Method: m,
		URL:    ResolveURL(urlTemplate, payload, search),
		Header: transport.MergeHeaders(nil, header),
	}
	if m == transport.MethodGet {
		req.Query = transport.EncodeQuery(payload)
	} else {
		req.Body = payload
	}
	return req, nil
}

// newRequestFunc returns the default request function for a URL and method.
// Headers are resolved when the request is made so that the sender sees the
// resource defaults merged with the action's own.
func (r *Resource) newRequestFunc(urlTemplate, method string, header map[string]string) RequestFunc {
	return func(ctx context.Context, payload any) (*transport.Response, error) {
		req, err := BuildRequest(urlTemplate, method, payload, transport.MergeHeaders(r.headers, header), r.paramSearch)
		if err != nil {
			return nil, err
		}
		return r.sender.Send(ctx, req)
	}
}
