// Package probe implements ordered-fallback lookups over untyped JSON-like
// data. External services here do not guarantee a stable response shape, so
// callers list candidate keys in preference order and take the first match.
package probe

import "encoding/json"

// Value returns the first non-nil value among the candidate keys.
func Value(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the first non-empty string value among the candidate keys.
func String(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Map returns the first value that is itself an object.
func Map(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if mm, ok := m[k].(map[string]any); ok {
			return mm, true
		}
	}
	return nil, false
}

// Slice returns the first value that is a sequence.
func Slice(m map[string]any, keys ...string) ([]any, bool) {
	for _, k := range keys {
		if s, ok := m[k].([]any); ok {
			return s, true
		}
	}
	return nil, false
}

// Float returns the first numeric value among the candidate keys. JSON
// decoding yields float64, but integers and json.Number appear when values
// are built in-process.
func Float(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// AsMap narrows an arbitrary value to an object.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// FirstMap returns the first element of a sequence when it is an object.
func FirstMap(s []any) (map[string]any, bool) {
	if len(s) == 0 {
		return nil, false
	}
	return AsMap(s[0])
}
