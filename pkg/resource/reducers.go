package resource

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/vango-dev/ducks/pkg/store"
)

// DeleteMode selects what RemoveByID does when the id is not in the state.
type DeleteMode int

const (
	// DeleteNoop leaves the state unchanged.
	DeleteNoop DeleteMode = iota
	// DeleteSourceCompat removes the last entry, matching older clients
	// that spliced at index -1.
	DeleteSourceCompat
)

// ReplaceAll replaces data with the action payload. Errors are kept.
func ReplaceAll(state store.State, action store.Action) store.State {
	data, _ := store.AsEntities(action.Data)
	out := make([]store.Entity, 0, len(data))
	for _, e := range data {
		out = append(out, e.Clone())
	}
	return store.State{Data: out, Errors: copyErrors(state.Errors)}
}

// Upsert removes every entry with the payload's id and appends the payload
// at the end. Ids are compared strictly: 1 and "1" are different ids.
func Upsert(state store.State, action store.Action) store.State {
	entity, ok := store.AsEntity(action.Data)
	if !ok {
		return state
	}

	id := entity.ID()
	out := make([]store.Entity, 0, len(state.Data)+1)
	for _, e := range state.Data {
		if strictEqual(e.ID(), id) {
			continue
		}
		out = append(out, e)
	}
	out = append(out, entity.Clone())
	return store.State{Data: out, Errors: copyErrors(state.Errors)}
}

// RemoveByID removes the first entry whose id loosely equals the payload's
// id. An absent id leaves the state unchanged.
func RemoveByID(state store.State, action store.Action) store.State {
	return removeByID(state, action, DeleteNoop)
}

// RemoveByIDCompat is RemoveByID, except that an absent id removes the last
// entry.
func RemoveByIDCompat(state store.State, action store.Action) store.State {
	return removeByID(state, action, DeleteSourceCompat)
}

func removeByID(state store.State, action store.Action, mode DeleteMode) store.State {
	var id any
	if entity, ok := store.AsEntity(action.Data); ok {
		id = entity.ID()
	}

	idx := -1
	for i, e := range state.Data {
		if looseEqual(e.ID(), id) {
			idx = i
			break
		}
	}
	if idx < 0 {
		if mode != DeleteSourceCompat || len(state.Data) == 0 {
			return state
		}
		idx = len(state.Data) - 1
	}

	out := make([]store.Entity, 0, len(state.Data)-1)
	out = append(out, state.Data[:idx]...)
	out = append(out, state.Data[idx+1:]...)
	return store.State{Data: out, Errors: copyErrors(state.Errors)}
}

// SetError replaces errors with a single entry holding the payload.
func SetError(state store.State, action store.Action) store.State {
	return store.State{Data: state.Data, Errors: []any{action.Data}}
}

// ClearErrors empties the error list.
func ClearErrors(state store.State, _ store.Action) store.State {
	return store.State{Data: state.Data, Errors: []any{}}
}

func copyErrors(errs []any) []any {
	out := make([]any, len(errs))
	copy(out, errs)
	return out
}

// strictEqual compares ids without type coercion, except that all numeric
// kinds compare by value so a decoded float64 matches an int literal.
func strictEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if _, ok := toFloat(b); ok {
		return false
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// looseEqual also matches numbers against numeric strings and booleans.
func looseEqual(a, b any) bool {
	if strictEqual(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	af, aok := coerceNumber(a)
	bf, bok := coerceNumber(b)
	if aok && bok {
		return af == bf
	}
	return false
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if n, ok := v.(interface{ Float64() (float64, error) }); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func coerceNumber(v any) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}
