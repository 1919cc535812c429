// Package resource generates CRUD bindings for one remote entity type.
//
// A Resource owns two tables keyed by namespaced action type
// ("WIDGET_$QUERY"): reducers that fold actions into a store.State, and
// request functions that talk to the remote side. DispatchAsync runs a
// request function in the background and sends the outcome to the
// configured dispatcher as either the action itself or "<NAME>_$ERROR".
//
// Basic Usage:
//
//	widgets := resource.MustNew("widget",
//	    resource.WithURL("https://api.example.com/widgets"),
//	    resource.WithHeaders(map[string]string{"Authorization": "Bearer " + token}),
//	).MustRegisterDefaultActions()
//
//	s := store.New()
//	s.Register("widget", widgets.Reducer(), widgets.InitialState())
//	widgets.Configure(s)
//
//	f, err := widgets.DispatchAsync(ctx, resource.ActionQuery, nil)
//	if err != nil {
//	    return err // unknown action or no dispatcher
//	}
//	f.Wait(ctx)
//	fmt.Println(s.Slice("widget").Data)
//
// Request failures never come back from DispatchAsync. They arrive in the
// store as "<NAME>_$ERROR" and end up as the single entry of State.Errors:
// the server's error body when there was a response, a *RemoteRequestError
// when there was none. Future.Err reports the *RemoteRequestError either way.
//
// Custom actions:
//
//	widgets.MustRegisterAsync(resource.AsyncAction{
//	    Name:    "archive",
//	    URL:     "https://api.example.com/widgets/:id/archive",
//	    Method:  "POST",
//	    Reducer: resource.Upsert,
//	})
//
//	widgets.MustRegisterSync("select", func(s store.State, a store.Action) store.State {
//	    ...
//	})
package resource
