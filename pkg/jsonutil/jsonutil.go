// Package jsonutil provides JSON key-casing helpers for boundaries that
// expect camelCase payloads from snake_case internals.
package jsonutil

import (
	"encoding/json"
	"strings"
	"unicode"
)

// ToCamelCase converts a snake_case identifier to camelCase.
func ToCamelCase(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// CamelizeKeys recursively rewrites every map key of a decoded JSON value
// from snake_case to camelCase.
func CamelizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, value := range t {
			out[ToCamelCase(key)] = CamelizeKeys(value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CamelizeKeys(item)
		}
		return out
	default:
		return v
	}
}

// MarshalCamelCase marshals v with all object keys camelized.
func MarshalCamelCase(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	return json.Marshal(CamelizeKeys(decoded))
}

// IsJSON reports whether s is a well-formed JSON document.
func IsJSON(s string) bool {
	return json.Valid([]byte(s))
}
