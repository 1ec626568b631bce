package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ValueKind discriminates the variants a property value can take.
type ValueKind int

const (
	// StringKind holds a string value.
	StringKind ValueKind = iota
	// NumberKind holds a float64 value.
	NumberKind
	// BoolKind holds a boolean value.
	BoolKind
	// MapKind holds a nested property map.
	MapKind
)

// Value is a tagged property value: string, number, boolean, or a
// nested map. Property maps are never open dictionaries of arbitrary
// native objects; everything round-trips through this sum type.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Map  Properties
}

// Properties is a string-keyed map of tagged values.
type Properties map[string]Value

// String returns a string Value.
func String(s string) Value { return Value{Kind: StringKind, Str: s} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{Kind: NumberKind, Num: n} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{Kind: BoolKind, Bool: b} }

// Nested returns a nested map Value.
func Nested(m Properties) Value { return Value{Kind: MapKind, Map: m} }

// Equal reports whether two values have the same kind and contents.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case StringKind:
		return v.Str == o.Str
	case NumberKind:
		return v.Num == o.Num
	case BoolKind:
		return v.Bool == o.Bool
	case MapKind:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for k, vv := range v.Map {
			ov, ok := o.Map[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON writes the value as plain JSON (string, number, bool, or
// object), so persisted documents stay readable by external tooling.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case StringKind:
		return json.Marshal(v.Str)
	case NumberKind:
		return json.Marshal(v.Num)
	case BoolKind:
		return json.Marshal(v.Bool)
	case MapKind:
		return json.Marshal(v.Map)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.Kind)
}

// UnmarshalJSON reads plain JSON back into the tagged representation.
// Anything that is not a string, number, boolean, or object is
// rejected; a corrupt value must abort the load rather than be skipped.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := valueFromJSON(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueFromJSON(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case map[string]interface{}:
		m := make(Properties, len(t))
		for k, rv := range t {
			pv, err := valueFromJSON(rv)
			if err != nil {
				return Value{}, fmt.Errorf("property %q: %w", k, err)
			}
			m[k] = pv
		}
		return Nested(m), nil
	}
	return Value{}, fmt.Errorf("unsupported property value type %T", raw)
}

// Merge unions incoming into p, incoming keys winning on conflict.
// A nil receiver stays nil only when incoming is empty.
func (p Properties) Merge(incoming Properties) Properties {
	if len(incoming) == 0 {
		return p
	}
	if p == nil {
		p = make(Properties, len(incoming))
	}
	for k, v := range incoming {
		p[k] = v
	}
	return p
}

// Keys returns the sorted property keys.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the property map.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		if v.Kind == MapKind {
			v.Map = v.Map.Clone()
		}
		out[k] = v
	}
	return out
}
