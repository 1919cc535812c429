// Package mockapi is an in-memory JSON REST backend. It serves the
// collections named in ducks.json during development and backs the
// end-to-end tests of the resource bindings.
//
// Each collection mounted at a path gets the routes the default resource
// actions expect:
//
//	GET    /widgets        list, optionally filtered by ?field=value
//	GET    /widgets/{id}   read one
//	POST   /widgets        create; a numeric id is assigned when missing
//	PATCH  /widgets/{id}   merge fields
//	PUT    /widgets/{id}   replace
//	DELETE /widgets/{id}   delete, responding with the removed entity
package mockapi
