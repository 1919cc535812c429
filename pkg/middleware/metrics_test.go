package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/ducks/pkg/store"
	"github.com/vango-dev/ducks/pkg/transport"
	"github.com/vango-dev/ducks/pkg/transport/transporttest"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsSender_RecordsOutcomes(t *testing.T) {
	mock := transporttest.New().
		Reply("GET", "/widgets", http.StatusOK, []any{}).
		Reply("POST", "/widgets", http.StatusUnprocessableEntity, nil).
		Fail("DELETE", "/widgets/1", errors.New("dial tcp: connection refused"))

	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	sender := m.Sender(mock)
	ctx := context.Background()

	if _, err := sender.Send(ctx, &transport.Request{Method: "GET", URL: "/widgets"}); err != nil {
		t.Fatalf("GET error: %v", err)
	}
	if _, err := sender.Send(ctx, &transport.Request{Method: "POST", URL: "/widgets"}); err != nil {
		t.Fatalf("POST error: %v", err)
	}
	if _, err := sender.Send(ctx, &transport.Request{Method: "DELETE", URL: "/widgets/1"}); err == nil {
		t.Fatal("expected DELETE error to propagate")
	}

	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("GET", "2xx")); got != 1 {
		t.Fatalf("requests_total(GET,2xx)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("POST", "4xx")); got != 1 {
		t.Fatalf("requests_total(POST,4xx)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("DELETE", "error")); got != 1 {
		t.Fatalf("requests_total(DELETE,error)=%v, want 1", got)
	}
	if got := metricCounterValue(t, m.requestErrors.WithLabelValues("DELETE", "connection_refused")); got != 1 {
		t.Fatalf("request_errors_total(DELETE,connection_refused)=%v, want 1", got)
	}
	if got := metricHistogramCount(t, m.requestDuration.WithLabelValues("GET")); got != 1 {
		t.Fatalf("request_duration_seconds(GET) count=%v, want 1", got)
	}
}

func TestMetricsDispatcher_CountsActions(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	var seen []store.Action
	d := m.Dispatcher(store.DispatcherFunc(func(a store.Action) {
		seen = append(seen, a)
	}))

	d.Dispatch(store.Action{Type: "WIDGET_$QUERY"})
	d.Dispatch(store.Action{Type: "WIDGET_$QUERY"})
	d.Dispatch(store.Action{Type: "WIDGET_$ERROR", Data: "boom"})

	if len(seen) != 3 {
		t.Fatalf("forwarded %d actions, want 3", len(seen))
	}
	if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("WIDGET_$QUERY")); got != 2 {
		t.Fatalf("actions_dispatched_total(WIDGET_$QUERY)=%v, want 2", got)
	}
	if got := metricCounterValue(t, m.actionErrors.WithLabelValues("WIDGET")); got != 1 {
		t.Fatalf("action_errors_total(WIDGET)=%v, want 1", got)
	}
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))

	defer func() {
		if recover() == nil {
			t.Fatal("expected second NewMetrics on the same registry to panic")
		}
	}()
	NewMetrics(WithRegistry(reg))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  string
		want string
	}{
		{"context canceled", "canceled"},
		{"Get \"http://x\": context deadline exceeded", "timeout"},
		{"i/o timeout", "timeout"},
		{"dial tcp 127.0.0.1:1: connect: connection refused", "connection_refused"},
		{"dial tcp: lookup nope: no such host", "dns"},
		{"transport: unsupported method \"TRACE\"", "invalid_method"},
		{"transport: encode body: bad", "validation"},
		{"something else", "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(errors.New(tt.err)); got != tt.want {
			t.Errorf("categorizeError(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestStatusClass(t *testing.T) {
	for code, want := range map[int]string{200: "2xx", 204: "2xx", 301: "3xx", 404: "4xx", 503: "5xx", 0: "unknown", 700: "unknown"} {
		if got := statusClass(code); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}
