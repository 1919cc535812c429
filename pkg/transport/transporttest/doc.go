// Package transporttest provides a programmable transport.Sender for tests.
//
// Routes are matched on method and URL path; the query string is ignored.
//
//	mock := transporttest.New().
//	    Reply("GET", "/widgets", 200, []any{map[string]any{"id": 1}}).
//	    Fail("DELETE", "/widgets/1", errors.New("connection reset"))
//
//	widgets := resource.MustNew("widget",
//	    resource.WithURL("/widgets"),
//	    resource.WithSender(mock),
//	)
package transporttest
