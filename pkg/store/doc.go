// Package store holds the action and state types shared by resources, plus a
// small reference store that can act as their dispatch sink.
//
// A resource only computes next state. The store owns the current value,
// applies one action at a time and notifies subscribers afterwards.
//
// Usage:
//
//	widgets := resource.MustNew("widget", resource.WithURL("/widgets"))
//
//	s := store.New()
//	s.Register("widget", widgets.Reducer(), widgets.InitialState())
//	widgets.Configure(s)
//
//	unsubscribe := s.Subscribe(func(a store.Action, st map[string]store.State) {
//	    log.Println(a.Type, len(st["widget"].Data))
//	})
//	defer unsubscribe()
package store
