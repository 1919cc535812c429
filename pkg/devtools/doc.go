// Package devtools streams store activity to browser or CLI tools over a
// WebSocket.
//
// Every dispatched action is sent to connected clients together with the
// root state it produced. A client receives a snapshot right after it
// connects and may send actions back for the store to dispatch.
//
// Messages are queued per client, so a slow client never stalls the store.
// A client whose queue fills up, or that misses the write timeout, is
// disconnected.
//
//	dt := devtools.New()
//	detach := dt.Attach(st)
//	defer detach()
//
//	r.Get("/_ducks/devtools", dt.HandleWebSocket)
//
// Messages are JSON:
//
//	{"type":"snapshot","state":{"widgets":{"data":[],"errors":[]}}}
//	{"type":"action","action":{"type":"WIDGET_$QUERY","data":[...]},"state":{...}}
//	{"type":"dispatch","action":{"type":"WIDGET_$CLEAR_ERRORS"}}   (client to server)
package devtools
