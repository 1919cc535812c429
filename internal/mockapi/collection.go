package mockapi

import (
	"sync"

	"github.com/vango-dev/ducks/pkg/transport"
)

// Collection is an ordered, concurrency-safe list of JSON objects keyed by
// their "id" field.
type Collection struct {
	mu    sync.RWMutex
	items []map[string]any
}

// NewCollection creates a collection holding copies of seed.
func NewCollection(seed []map[string]any) *Collection {
	c := &Collection{items: make([]map[string]any, 0, len(seed))}
	for _, item := range seed {
		c.items = append(c.items, clone(item))
	}
	return c
}

// List returns copies of the items whose fields match every filter value.
func (c *Collection) List(filter map[string]string) []map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]map[string]any, 0, len(c.items))
	for _, item := range c.items {
		if matches(item, filter) {
			out = append(out, clone(item))
		}
	}
	return out
}

// Get returns a copy of the item with the given id.
func (c *Collection) Get(id string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return clone(c.items[i]), true
	}
	return nil, false
}

// Create appends item, assigning the next numeric id when it has none. An
// item whose id already exists is rejected.
func (c *Collection) Create(item map[string]any) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item = clone(item)
	if _, ok := item["id"]; !ok {
		item["id"] = c.nextID()
	} else if c.indexOf(transport.FormatValue(item["id"])) >= 0 {
		return nil, false
	}
	c.items = append(c.items, item)
	return clone(item), true
}

// Update merges fields into the item with the given id. The id itself never
// changes.
func (c *Collection) Update(id string, fields map[string]any) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	updated := clone(c.items[i])
	for k, v := range fields {
		if k == "id" {
			continue
		}
		updated[k] = v
	}
	c.items[i] = updated
	return clone(updated), true
}

// Replace swaps the item with the given id for item, keeping the id.
func (c *Collection) Replace(id string, item map[string]any) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	replaced := clone(item)
	replaced["id"] = c.items[i]["id"]
	c.items[i] = replaced
	return clone(replaced), true
}

// Delete removes the item with the given id and returns it.
func (c *Collection) Delete(id string) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	removed := c.items[i]
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return removed, true
}

// Len returns the number of items.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection) indexOf(id string) int {
	for i, item := range c.items {
		if transport.FormatValue(item["id"]) == id {
			return i
		}
	}
	return -1
}

// nextID returns one more than the largest numeric id.
func (c *Collection) nextID() float64 {
	highest := 0.0
	for _, item := range c.items {
		if n, ok := number(item["id"]); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func matches(item map[string]any, filter map[string]string) bool {
	for k, want := range filter {
		v, ok := item[k]
		if !ok || transport.FormatValue(v) != want {
			return false
		}
	}
	return true
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
