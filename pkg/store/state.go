package store

import (
	"github.com/goccy/go-json"
)

// Entity is a remote record. The "id" key is its identity.
type Entity map[string]any

// ID returns the entity's id value, or nil when it has none.
func (e Entity) ID() any {
	if e == nil {
		return nil
	}
	return e["id"]
}

// Clone returns a shallow copy of the entity.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// State is the value owned by one resource slice.
type State struct {
	Data   []Entity `json:"data"`
	Errors []any    `json:"errors"`
}

// NewState returns a state holding data and no errors. A nil data slice is
// replaced with an empty one so that JSON output is always an array.
func NewState(data []Entity) State {
	if data == nil {
		data = []Entity{}
	}
	return State{Data: data, Errors: []any{}}
}

// Clone returns a copy whose slices can be modified independently.
func (s State) Clone() State {
	data := make([]Entity, len(s.Data))
	copy(data, s.Data)
	errs := make([]any, len(s.Errors))
	copy(errs, s.Errors)
	return State{Data: data, Errors: errs}
}

// AsEntity converts an action payload into an Entity. Maps are used as-is;
// anything else is normalized through its JSON encoding.
func AsEntity(v any) (Entity, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case Entity:
		return t, true
	case map[string]any:
		return Entity(t), true
	}

	var out map[string]any
	if !normalize(v, &out) || out == nil {
		return nil, false
	}
	return Entity(out), true
}

// AsEntities converts an action payload into a slice of entities. Elements
// that are not objects are dropped.
func AsEntities(v any) ([]Entity, bool) {
	switch t := v.(type) {
	case nil:
		return []Entity{}, false
	case []Entity:
		return t, true
	case []map[string]any:
		out := make([]Entity, 0, len(t))
		for _, m := range t {
			out = append(out, Entity(m))
		}
		return out, true
	case []any:
		out := make([]Entity, 0, len(t))
		for _, item := range t {
			if e, ok := AsEntity(item); ok {
				out = append(out, e)
			}
		}
		return out, true
	}

	var raw []any
	if !normalize(v, &raw) {
		return []Entity{}, false
	}
	return AsEntities(raw)
}

func normalize(v any, out any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}
