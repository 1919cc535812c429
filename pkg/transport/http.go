package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// HTTPSender sends requests as JSON over HTTP.
type HTTPSender struct {
	client *http.Client
	header map[string]string
	logger *slog.Logger
}

// HTTPOption configures an HTTPSender.
type HTTPOption func(*HTTPSender)

// WithClient sets the underlying http.Client.
func WithClient(client *http.Client) HTTPOption {
	return func(s *HTTPSender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithHeader adds a header sent with every request. Request headers win.
func WithHeader(key, value string) HTTPOption {
	return func(s *HTTPSender) {
		s.header[key] = value
	}
}

// WithLogger sets the sender's logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPSender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTTPSender creates a sender. The default client has no timeout; use the
// request context to bound calls.
func NewHTTPSender(opts ...HTTPOption) *HTTPSender {
	s := &HTTPSender{
		client: &http.Client{Transport: http.DefaultTransport},
		header: make(map[string]string),
		logger: slog.Default().With("component", "transport"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, req *Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method := NormalizeMethod(req.Method)
	if !SupportedMethod(method) {
		return nil, fmt.Errorf("transport: unsupported method %q", req.Method)
	}

	target, err := withQuery(req.URL, req.Query)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid url %q: %w", req.URL, err)
	}

	var body io.Reader
	if SendsBody(method) && req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("transport: encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range MergeHeaders(s.header, req.Header) {
		httpReq.Header.Set(k, v)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Debug("request failed", "method", method, "url", target, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}

	s.logger.Debug("request completed", "method", method, "url", target, "status", resp.StatusCode)

	return &Response{
		OK:         StatusOK(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Body:       decodeBody(raw),
		Header:     resp.Header,
	}, nil
}

// decodeBody parses JSON bodies and falls back to the raw text.
func decodeBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(raw)
	}
	return v
}

func withQuery(rawURL string, query url.Values) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	merged := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	u.RawQuery = merged.Encode()
	return strings.TrimSuffix(u.String(), "?"), nil
}
