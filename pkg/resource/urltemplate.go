package resource

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vango-dev/ducks/pkg/transport"
)

// ParamSearch selects how a URL placeholder is looked up in a payload.
type ParamSearch int

const (
	// ParamSearchDeep checks each level for the key before descending into
	// nested objects and arrays in sorted key order.
	ParamSearchDeep ParamSearch = iota
	// ParamSearchFirstKey only ever looks at the first key of each level
	// (the first in sorted order) and descends into its value.
	ParamSearchFirstKey
)

var placeholderRe = regexp.MustCompile(`:(\w+)`)

// Params returns the placeholder names in the path of a URL template, in
// order of appearance.
func Params(template string) []string {
	_, path := splitAuthority(template)
	matches := placeholderRe.FindAllStringSubmatch(path, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// ResolveURL fills :param placeholders in the path of template from payload.
// A value that cannot be found is written as "null".
func ResolveURL(template string, payload any, search ParamSearch) string {
	base, path := splitAuthority(template)

	matches := placeholderRe.FindAllStringSubmatch(path, -1)
	if len(matches) == 0 {
		return template
	}

	data := normalizePayload(payload)
	for _, m := range matches {
		value, _ := FindValue(data, m[1], search)
		path = strings.Replace(path, m[0], url.PathEscape(transport.FormatValue(value)), 1)
	}
	return base + path
}

// FindValue looks up key in a decoded JSON payload.
func FindValue(payload any, key string, search ParamSearch) (any, bool) {
	if search == ParamSearchFirstKey {
		return findFirstKey(payload, key)
	}
	return findDeep(payload, key)
}

func findDeep(v any, key string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if value, ok := t[key]; ok {
			return value, true
		}
		for _, k := range sortedKeys(t) {
			if value, ok := findDeep(t[k], key); ok {
				return value, true
			}
		}
	case []any:
		for _, item := range t {
			if value, ok := findDeep(item, key); ok {
				return value, true
			}
		}
	}
	return nil, false
}

func findFirstKey(v any, key string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			return nil, false
		}
		first := sortedKeys(t)[0]
		if first == key {
			return t[first], true
		}
		return findFirstKey(t[first], key)
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		if key == "0" {
			return t[0], true
		}
		return findFirstKey(t[0], key)
	}
	return nil, false
}

// splitAuthority separates "scheme://host:port" from the rest of the URL so
// that ports are never mistaken for placeholders.
func splitAuthority(raw string) (string, string) {
	i := strings.Index(raw, "://")
	if i < 0 {
		return "", raw
	}
	rest := raw[i+3:]
	j := strings.IndexAny(rest, "/?#")
	if j < 0 {
		return raw, ""
	}
	return raw[:i+3+j], rest[j:]
}

// normalizePayload turns structs and typed maps into the generic shapes
// produced by decoding JSON.
func normalizePayload(payload any) any {
	switch payload.(type) {
	case nil, map[string]any, []any:
		return payload
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
