package lifecycle

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identified is implemented by every listed entity.
type Identified interface {
	Identity() string
}

// Replace returns a copy of items so the store never shares a caller's backing array.
func Replace[E any](items []E) []E {
	out := make([]E, len(items))
	copy(out, items)
	return out
}

// Prepend puts item first, dropping any older copy with the same identity.
func Prepend[E Identified](items []E, item E) []E {
	out := make([]E, 0, len(items)+1)
	out = append(out, item)
	for _, existing := range items {
		if existing.Identity() != item.Identity() {
			out = append(out, existing)
		}
	}
	return out
}

// ReplaceByID applies merge to the element with identity id. It reports false
// and returns items unchanged when id is not present.
func ReplaceByID[E Identified](items []E, id string, merge func(E) E) ([]E, bool) {
	idx := IndexOf(items, id)
	if idx < 0 {
		return items, false
	}
	out := Replace(items)
	out[idx] = merge(out[idx])
	return out, true
}

// RemoveByID drops the element with identity id. Removing an absent id is a no-op.
func RemoveByID[E Identified](items []E, id string) ([]E, bool) {
	idx := IndexOf(items, id)
	if idx < 0 {
		return items, false
	}
	out := make([]E, 0, len(items)-1)
	out = append(out, items[:idx]...)
	out = append(out, items[idx+1:]...)
	return out, true
}

// IndexOf returns the position of id in items, or -1.
func IndexOf[E Identified](items []E, id string) int {
	for i, item := range items {
		if item.Identity() == id {
			return i
		}
	}
	return -1
}

// Merge overlays the top-level fields named in patch onto base. Fields patch
// does not name keep base's values. An empty or null patch returns base.
func Merge[E any](base E, patch json.RawMessage) (E, error) {
	trimmed := bytes.TrimSpace(patch)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return base, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return base, fmt.Errorf("decode patch: %w", err)
	}
	raw, err := json.Marshal(base)
	if err != nil {
		return base, fmt.Errorf("encode base: %w", err)
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base, fmt.Errorf("decode base: %w", err)
	}
	for key, value := range fields {
		merged[key] = value
	}
	raw, err = json.Marshal(merged)
	if err != nil {
		return base, fmt.Errorf("encode merged: %w", err)
	}
	var out E
	if err := json.Unmarshal(raw, &out); err != nil {
		return base, fmt.Errorf("decode merged: %w", err)
	}
	return out, nil
}

// MergeByID merges patch onto the element with identity id. It reports false
// and returns items unchanged when id is absent or patch does not apply.
func MergeByID[E Identified](items []E, id string, patch json.RawMessage) ([]E, E, bool) {
	var zero E
	idx := IndexOf(items, id)
	if idx < 0 {
		return items, zero, false
	}
	merged, err := Merge(items[idx], patch)
	if err != nil {
		return items, items[idx], false
	}
	out := Replace(items)
	out[idx] = merged
	return out, merged, true
}
