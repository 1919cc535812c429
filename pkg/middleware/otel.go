package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ducks/pkg/transport"
)

// Default tracer name.
const defaultTracerName = "ducks"

// OTelConfig configures request tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "ducks").
	TracerName string

	// TracerProvider supplies the tracer. If nil, the global provider is used.
	TracerProvider trace.TracerProvider

	// IncludeURL records the full request URL, query included.
	// Enabled by default.
	IncludeURL bool

	// Filter determines which requests to trace.
	// Return true to trace the request, false to skip.
	// If nil, all requests are traced.
	Filter func(req *transport.Request) bool

	// AttributeExtractor extracts custom attributes from the request.
	AttributeExtractor func(req *transport.Request) []attribute.KeyValue
}

// OTelOption configures request tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeURL enables/disables recording the request URL.
func WithIncludeURL(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeURL = include
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(req *transport.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(req *transport.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
		IncludeURL: true,
	}
}

// Tracing wraps next so that every request runs inside a client span. The
// span context is passed to next, so HTTP instrumentation further down
// becomes a child of it.
//
// Transport errors and non-2xx responses mark the span as failed.
func Tracing(next transport.Sender, opts ...OTelOption) transport.Sender {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	provider := config.TracerProvider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(config.TracerName)

	return transport.SenderFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		if config.Filter != nil && !config.Filter(req) {
			return next.Send(ctx, req)
		}

		method := transport.NormalizeMethod(req.Method)
		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", method),
			attribute.String("url.path", req.Path()),
		}
		if config.IncludeURL {
			attrs = append(attrs, attribute.String("url.full", req.URL))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(req)...)
		}

		spanCtx, span := tracer.Start(ctx, formatSpanName(method, req.Path()),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		resp, err := next.Send(spanCtx, req)

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case resp == nil:
			span.SetStatus(codes.Error, "no response")
		default:
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
			if resp.OK {
				span.SetStatus(codes.Ok, "")
			} else {
				span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.StatusCode))
			}
		}

		return resp, err
	})
}

func formatSpanName(method, path string) string {
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s %s", method, path)
}
