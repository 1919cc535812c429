// Package middleware wraps transport senders and store dispatchers with
// Prometheus metrics and OpenTelemetry tracing.
//
// # Prometheus Metrics
//
// A Metrics value owns one set of collectors registered on one registry:
//   - ducks_requests_total: Requests by method and outcome
//   - ducks_request_duration_seconds: Request duration histogram by method
//   - ducks_request_errors_total: Failed requests by method and error type
//   - ducks_actions_dispatched_total: Dispatched actions by type
//   - ducks_action_errors_total: "$ERROR" actions by resource
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	widgets := resource.MustNew("widget",
//	    resource.WithURL(url),
//	    resource.WithSender(m.Sender(transport.NewHTTPSender())),
//	)
//	widgets.Configure(m.Dispatcher(st))
//
// Then expose metrics:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # OpenTelemetry
//
// Tracing starts a client span around every request and passes the span
// context on to the wrapped sender:
//
//	sender := middleware.Tracing(transport.NewHTTPSender(),
//	    middleware.WithTracerName("my-app"),
//	)
//
// The tracer comes from the global provider unless WithTracerProvider is
// given.
package middleware
