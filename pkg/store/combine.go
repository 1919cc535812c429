package store

// Combine builds a root reducer from per-slice reducers. Each slice only sees
// its own state; slices whose reducer returns the same value keep it.
func Combine(reducers map[string]Reducer) func(map[string]State, Action) map[string]State {
	return func(state map[string]State, action Action) map[string]State {
		next := make(map[string]State, len(reducers))
		for key, reduce := range reducers {
			next[key] = reduce(state[key], action)
		}
		return next
	}
}
