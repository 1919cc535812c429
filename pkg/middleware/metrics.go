package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "ducks").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "ducks",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds one set of collectors. Create it once per registry; a
// second NewMetrics on the same registry panics on duplicate registration.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
	actionErrors    *prometheus.CounterVec
}

// NewMetrics registers the collectors and returns them.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of resource requests",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Resource request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"method"}),

		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_errors_total",
			Help:        "Total number of requests that returned no response",
			ConstLabels: config.ConstLabels,
		}, []string{"method", "error_type"}),

		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_dispatched_total",
			Help:        "Total number of actions dispatched to the store",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		actionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_errors_total",
			Help:        "Total number of error actions dispatched, by resource",
			ConstLabels: config.ConstLabels,
		}, []string{"resource"}),
	}
}

// Sender wraps next so that every request is counted and timed.
func (m *Metrics) Sender(next transport.Sender) transport.Sender {
	return transport.SenderFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		method := transport.NormalizeMethod(req.Method)
		if method == "" {
			method = "UNKNOWN"
		}

		start := time.Now()
		resp, err := next.Send(ctx, req)
		m.requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

		status := "error"
		if err != nil {
			m.requestErrors.WithLabelValues(method, categorizeError(err)).Inc()
		} else if resp != nil {
			status = statusClass(resp.StatusCode)
		}
		m.requestsTotal.WithLabelValues(method, status).Inc()

		return resp, err
	})
}

// Dispatcher wraps next so that every action is counted.
func (m *Metrics) Dispatcher(next store.Dispatcher) store.Dispatcher {
	return store.DispatcherFunc(func(action store.Action) {
		m.actionsTotal.WithLabelValues(action.Type).Inc()
		if resource, ok := strings.CutSuffix(action.Type, "_$ERROR"); ok {
			m.actionErrors.WithLabelValues(resource).Inc()
		}
		next.Dispatch(action)
	})
}

// statusClass buckets a status code as "2xx", "4xx" and so on.
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "context canceled"):
		return "canceled"
	case strings.Contains(errStr, "deadline exceeded"), strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "connection refused"):
		return "connection_refused"
	case strings.Contains(errStr, "no such host"):
		return "dns"
	case strings.Contains(errStr, "unsupported method"), strings.Contains(errStr, "invalid request method"):
		return "invalid_method"
	case strings.Contains(errStr, "encode"), strings.Contains(errStr, "invalid url"):
		return "validation"
	default:
		return "internal"
	}
}
