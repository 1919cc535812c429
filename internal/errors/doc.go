// Package errors provides structured, actionable error messages for the
// ducks command line tool.
//
// Every error has a code (e.g. "D102") that maps to a short message, a
// detailed explanation and a documentation URL. Callers add the config
// location, a suggestion or the underlying error.
//
// # Error Categories
//
//   - config: ducks.json could not be read or is invalid
//   - cli: bad command line input
//   - transport: a remote backend could not be reached
//   - server: the development server failed
//
// # Usage
//
//	err := errors.New("D102").
//	    WithOffset("ducks.json", data, offset).
//	    WithSuggestion("Remove the trailing comma after the last resource")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR D102: Config file is not valid JSON
//	//
//	//   ducks.json:4:18
//	//
//	//       2 │   "resources": [
//	//       3 │     {"name": "widget",
//	//   →   4 │      "url": "/widgets",}
//	//         │                       ^
//	//
//	//   Hint: Remove the trailing comma after the last resource
//	//
//	//   Learn more: https://ducks.dev/docs/errors/D102
package errors
