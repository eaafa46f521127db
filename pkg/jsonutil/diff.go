// Package jsonutil compares JSON documents key by key.
//
// covidash uses it to show what changed between two cached snapshots:
// each snapshot is flattened to an object keyed by country code, and the
// diff lists the statistics that were added, removed or changed.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Change kinds.
const (
	Added   = "add"
	Updated = "update"
	Deleted = "delete"
)

// Change is one difference between two documents. Path joins object keys
// with dots.
type Change struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
}

// Diff compares two JSON objects. Empty input counts as an empty object.
func Diff(oldJSON, newJSON []byte) ([]Change, error) {
	oldMap, err := decodeObject(oldJSON)
	if err != nil {
		return nil, fmt.Errorf("parsing old JSON: %w", err)
	}
	newMap, err := decodeObject(newJSON)
	if err != nil {
		return nil, fmt.Errorf("parsing new JSON: %w", err)
	}
	return diffMaps("", oldMap, newMap, nil), nil
}

// DiffValues marshals both values and compares the results.
func DiffValues(oldVal, newVal any) ([]Change, error) {
	a, err := json.Marshal(oldVal)
	if err != nil {
		return nil, fmt.Errorf("encoding old value: %w", err)
	}
	b, err := json.Marshal(newVal)
	if err != nil {
		return nil, fmt.Errorf("encoding new value: %w", err)
	}
	return Diff(a, b)
}

// Pretty indents a JSON document for display. Invalid input is returned
// unchanged.
func Pretty(s string) string {
	var obj any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return s
	}
	return string(pretty)
}

func decodeObject(b []byte) (map[string]any, error) {
	m := make(map[string]any)
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

func diffMaps(prefix string, oldMap, newMap map[string]any, diffs []Change) []Change {
	allKeys := make(map[string]bool)
	for k := range oldMap {
		allKeys[k] = true
	}
	for k := range newMap {
		allKeys[k] = true
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(allKeys))
	for k := range allKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}

		oldVal, oldExists := oldMap[k]
		newVal, newExists := newMap[k]

		switch {
		case !oldExists && newExists:
			diffs = append(diffs, Change{Path: path, Type: Added, NewValue: toJSONStr(newVal)})
		case oldExists && !newExists:
			diffs = append(diffs, Change{Path: path, Type: Deleted, OldValue: toJSONStr(oldVal)})
		default:
			oldStr, newStr := toJSONStr(oldVal), toJSONStr(newVal)
			if oldStr == newStr {
				continue
			}
			oldChild, oldIsMap := oldVal.(map[string]any)
			newChild, newIsMap := newVal.(map[string]any)
			if oldIsMap && newIsMap {
				diffs = diffMaps(path, oldChild, newChild, diffs)
				continue
			}
			diffs = append(diffs, Change{Path: path, Type: Updated, OldValue: oldStr, NewValue: newStr})
		}
	}

	return diffs
}

func toJSONStr(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
