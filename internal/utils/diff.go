package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

// ChangedFields lists the top-level keys whose JSON value differs between the
// two states, sorted. Keys present on one side only count as changed. When
// either state is not a JSON object the result is empty.
func ChangedFields(prev, next any) []string {
	before, ok := asObject(prev)
	if !ok {
		return []string{}
	}
	after, ok := asObject(next)
	if !ok {
		return []string{}
	}

	changed := make([]string, 0)
	for key, value := range after {
		old, exists := before[key]
		if !exists || !sameJSON(old, value) {
			changed = append(changed, key)
		}
	}
	for key := range before {
		if _, exists := after[key]; !exists {
			changed = append(changed, key)
		}
	}

	sort.Strings(changed)
	return changed
}

func asObject(v any) (map[string]json.RawMessage, bool) {
	if v == nil {
		return nil, false
	}

	var raw []byte
	switch b := v.(type) {
	case json.RawMessage:
		raw = b
	case []byte:
		raw = b
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		raw = encoded
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// sameJSON compares two raw values after normalizing whitespace and key order.
func sameJSON(a, b json.RawMessage) bool {
	var x, y any
	if err := json.Unmarshal(a, &x); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Unmarshal(b, &y); err != nil {
		return bytes.Equal(a, b)
	}
	nx, _ := json.Marshal(x)
	ny, _ := json.Marshal(y)
	return bytes.Equal(nx, ny)
}
