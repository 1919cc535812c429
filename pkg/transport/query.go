package transport

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// EncodeQuery turns a payload into query parameters. Top-level scalars are
// formatted directly, arrays of scalars repeat the key, and nested objects
// are sent as their JSON encoding. Nil payloads and nil values are skipped.
func EncodeQuery(payload any) url.Values {
	values := url.Values{}
	if payload == nil {
		return values
	}

	fields, ok := payload.(map[string]any)
	if !ok {
		data, err := json.Marshal(payload)
		if err != nil {
			return values
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return values
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := fields[k].(type) {
		case nil:
		case []any:
			for _, item := range v {
				if s, ok := scalarString(item); ok {
					values.Add(k, s)
				}
			}
		default:
			if s, ok := scalarString(v); ok {
				values.Add(k, s)
				continue
			}
			if data, err := json.Marshal(v); err == nil {
				values.Add(k, string(data))
			}
		}
	}
	return values
}

// FormatValue renders a scalar the way it should appear in a URL.
func FormatValue(v any) string {
	if s, ok := scalarString(v); ok {
		return s
	}
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", t), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", t), true
	case json.Number:
		return t.String(), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}
