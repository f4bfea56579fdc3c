// Package value models loosely typed front-matter data as a tagged value.
//
// YAML decoders hand back a mix of map[string]any, map[any]any, []any and
// scalars. Value normalises all of those once, and the accessors report
// whether the requested shape was present instead of panicking, so callers
// can fall through to their documented defaults.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindList
	KindMap
)

// String returns a readable kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is an immutable tagged union over the shapes YAML can produce.
type Value struct {
	kind Kind
	s    string
	b    bool
	i    int64
	f    float64
	list []Value
	m    Map
}

// Map is a string-keyed collection of values.
type Map map[string]Value

// Null is the zero Value.
var Null = Value{}

// String constructs a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bool constructs a bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int constructs an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// List constructs a list value.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Of converts a decoded YAML/JSON value into a Value. Unknown types are
// rendered through fmt so nothing is silently lost.
func Of(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return Int(int64(v))
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		return Int(int64(v))
	case float32:
		return Value{kind: KindFloat, f: float64(v)}
	case float64:
		return Value{kind: KindFloat, f: v}
	case time.Time:
		return String(v.Format(time.RFC3339))
	case []any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, Of(item))
		}
		return Value{kind: KindList, list: items}
	case []string:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, String(item))
		}
		return Value{kind: KindList, list: items}
	case []map[string]any:
		items := make([]Value, 0, len(v))
		for _, item := range v {
			items = append(items, Value{kind: KindMap, m: FromMap(item)})
		}
		return Value{kind: KindList, list: items}
	case map[string]any:
		return Value{kind: KindMap, m: FromMap(v)}
	case map[any]any:
		m := make(Map, len(v))
		for key, item := range v {
			m[fmt.Sprint(key)] = Of(item)
		}
		return Value{kind: KindMap, m: m}
	case Map:
		return Value{kind: KindMap, m: v}
	default:
		return String(fmt.Sprint(v))
	}
}

// FromMap converts a decoded front-matter map. A nil input yields an empty Map.
func FromMap(raw map[string]any) Map {
	m := make(Map, len(raw))
	for key, item := range raw {
		m[key] = Of(item)
	}
	return m
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v holds nothing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string payload when v is a string. Text renders any
// kind as a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Bool returns the bool payload when v is a bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Int returns the integer payload when v is an int.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// List returns the items when v is a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Map returns the entries when v is a map.
func (v Value) Map() (Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Text renders scalars as text. Null, lists and maps render as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	if m == nil {
		return Null, false
	}
	v, ok := m[key]
	return v, ok
}

// Text returns the scalar text stored under key, or "".
func (m Map) Text(key string) string {
	v, _ := m.Get(key)
	return v.Text()
}

// Maps returns the map items of the list stored under key. Non-map items
// are skipped; a missing key or a non-list value yields nil.
func (m Map) Maps(key string) []Map {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	items, ok := v.List()
	if !ok {
		return nil
	}
	var out []Map
	for _, item := range items {
		if entry, ok := item.Map(); ok {
			out = append(out, entry)
		}
	}
	return out
}

// Strings returns the scalar items of the list stored under key.
func (m Map) Strings(key string) []string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	items, ok := v.List()
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := item.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Native converts v back into plain Go values (string, bool, int64,
// float64, []any, map[string]any) for JSON encoding and templates.
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		return v.m.Native()
	default:
		return nil
	}
}

// Native converts the map into map[string]any.
func (m Map) Native() map[string]any {
	out := make(map[string]any, len(m))
	for key, item := range m {
		out[key] = item.Native()
	}
	return out
}
