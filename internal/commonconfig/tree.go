// Package commonconfig merges a shared config fragment into provider
// fragments and strips it back out, for JSON objects and TOML tables alike.
package commonconfig

import (
	"reflect"
	"sort"

	"ccswitch/config/models"
)

// Tree is a mutable object/table node of a decoded config document
type Tree interface {
	Keys() []string
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Len() int
	// Child returns the value at key as a Tree when it is a nested object/table.
	// Mutations through the child are visible in the parent.
	Child(key string) (Tree, bool)
	// Equal reports whether two values are structurally equal in this representation
	Equal(a, b any) bool
}

// JSONTree is a decoded JSON object
type JSONTree map[string]any

func (t JSONTree) Keys() []string             { return sortedKeys(t) }
func (t JSONTree) Get(key string) (any, bool) { v, ok := t[key]; return v, ok }
func (t JSONTree) Set(key string, value any)  { t[key] = value }
func (t JSONTree) Delete(key string)          { delete(t, key) }
func (t JSONTree) Len() int                   { return len(t) }

func (t JSONTree) Child(key string) (Tree, bool) {
	m, ok := t[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return JSONTree(m), true
}

// Equal compares JSON values with every number treated as float64
func (t JSONTree) Equal(a, b any) bool {
	return reflect.DeepEqual(normalizeJSON(a), normalizeJSON(b))
}

// TOMLTree is a decoded TOML table
type TOMLTree map[string]any

func (t TOMLTree) Keys() []string             { return sortedKeys(t) }
func (t TOMLTree) Get(key string) (any, bool) { v, ok := t[key]; return v, ok }
func (t TOMLTree) Set(key string, value any)  { t[key] = value }
func (t TOMLTree) Delete(key string)          { delete(t, key) }
func (t TOMLTree) Len() int                   { return len(t) }

func (t TOMLTree) Child(key string) (Tree, bool) {
	m, ok := t[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return TOMLTree(m), true
}

// Equal compares TOML values; integers and floats stay distinct types, and
// arrays of tables compare like plain arrays
func (t TOMLTree) Equal(a, b any) bool {
	return reflect.DeepEqual(normalizeTOML(a), normalizeTOML(b))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeJSON(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeJSON(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeJSON(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

func normalizeTOML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeTOML(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeTOML(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeTOML(item)
		}
		return out
	case int:
		return int64(val)
	default:
		return v
	}
}

func cloneValue(v any) any {
	return models.CloneValue(v)
}
