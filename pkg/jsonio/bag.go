// Package jsonio implements the Bag dynamic JSON tree and the JSON Walker.
//
// Every pack file is heterogeneous, partially-specified JSON. Rather than
// unmarshalling into per-section Go structs immediately (which would force
// every optional/ragged field to be guessed up front), files are decoded into
// a Bag, a thin wrapper over the parsed any tree, and domain types in
// pkg/model and pkg/ingest are constructed only at binder boundaries by
// reading narrow, typed accessors off a Bag. See Design Note "Dynamic JSON ->
// typed surface".
package jsonio

import "strings"

// Bag wraps one node of a decoded JSON tree (map[string]any, []any, or a
// scalar) and exposes typed, default-valued accessors instead of ad-hoc type
// assertions.
type Bag struct {
	v any
}

// NewBag wraps an arbitrary decoded value.
func NewBag(v any) Bag { return Bag{v: v} }

// Raw returns the underlying decoded value.
func (b Bag) Raw() any { return b.v }

// Exists reports whether this Bag wraps a non-nil value.
func (b Bag) Exists() bool { return b.v != nil }

// IsMap reports whether the wrapped value is a JSON object.
func (b Bag) IsMap() bool {
	_, ok := b.v.(map[string]any)
	return ok
}

// IsSlice reports whether the wrapped value is a JSON array.
func (b Bag) IsSlice() bool {
	_, ok := b.v.([]any)
	return ok
}

// Get returns the value at key if the Bag wraps an object, else an empty Bag.
func (b Bag) Get(key string) Bag {
	m, ok := b.v.(map[string]any)
	if !ok {
		return Bag{}
	}
	return Bag{v: m[key]}
}

// GetPath walks a sequence of object keys, short-circuiting on the first
// missing key.
func (b Bag) GetPath(keys ...string) Bag {
	cur := b
	for _, k := range keys {
		cur = cur.Get(k)
	}
	return cur
}

// Index returns the i-th element if the Bag wraps an array, else an empty Bag.
func (b Bag) Index(i int) Bag {
	s, ok := b.v.([]any)
	if !ok || i < 0 || i >= len(s) {
		return Bag{}
	}
	return Bag{v: s[i]}
}

// Keys returns the object's keys in map iteration order (non-deterministic);
// callers that need determinism should sort the result.
func (b Bag) Keys() []string {
	m, ok := b.v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Map returns the object as a map of child Bags, or nil if not an object.
func (b Bag) Map() map[string]Bag {
	m, ok := b.v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]Bag, len(m))
	for k, v := range m {
		out[k] = Bag{v: v}
	}
	return out
}

// Slice returns the array as a slice of child Bags, or nil if not an array.
func (b Bag) Slice() []Bag {
	s, ok := b.v.([]any)
	if !ok {
		return nil
	}
	out := make([]Bag, len(s))
	for i, v := range s {
		out[i] = Bag{v: v}
	}
	return out
}

// String returns the wrapped string, or def if the Bag isn't a string.
func (b Bag) String(def string) string {
	s, ok := b.v.(string)
	if !ok {
		return def
	}
	return s
}

// Bool returns the wrapped bool, or def if the Bag isn't a bool.
func (b Bag) Bool(def bool) bool {
	v, ok := b.v.(bool)
	if !ok {
		return def
	}
	return v
}

// Int returns the wrapped number truncated to int, or def if not a number.
// goccy/go-yaml's any-typed decode yields int64/uint64 for JSON integers and
// float64 for numbers with a fraction or exponent.
func (b Bag) Int(def int) int {
	switch n := b.v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return def
	}
}

// StringSlice returns a []any of strings as a []string, skipping non-strings.
func (b Bag) StringSlice() []string {
	s, ok := b.v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(s))
	for _, v := range s {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// LastColonSegment returns the part of a string after the last ':',
// or the whole string if there's no ':'. Used to resolve resolver/species
// "species" / "target" references of the form "namespace:name".
func LastColonSegment(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}
