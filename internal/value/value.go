// Package value defines the generic value model shared by front matter extras
// and auxiliary data tables.
//
// Value is a closed sum type: String, Int, Float, Bool, Seq, Map and Null are the
// only implementations. Consumers switch over the concrete types (or Kind) and
// can rely on the set never growing outside this package.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindSeq
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one node of a generic value tree.
type Value interface {
	Kind() Kind
	// Interface returns the plain Go representation (string, int64, float64,
	// bool, []any, map[string]any or nil) used when handing values to templates.
	Interface() any
	sealed()
}

type (
	String string
	Int    int64
	Float  float64
	Bool   bool
	Seq    []Value
	Map    map[string]Value
	Null   struct{}
)

func (String) Kind() Kind { return KindString }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Bool) Kind() Kind   { return KindBool }
func (Seq) Kind() Kind    { return KindSeq }
func (Map) Kind() Kind    { return KindMap }
func (Null) Kind() Kind   { return KindNull }

func (String) sealed() {}
func (Int) sealed()    {}
func (Float) sealed()  {}
func (Bool) sealed()   {}
func (Seq) sealed()    {}
func (Map) sealed()    {}
func (Null) sealed()   {}

func (s String) Interface() any { return string(s) }
func (i Int) Interface() any    { return int64(i) }
func (f Float) Interface() any  { return float64(f) }
func (b Bool) Interface() any   { return bool(b) }
func (Null) Interface() any     { return nil }

func (s Seq) Interface() any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v.Interface()
	}
	return out
}

func (m Map) Interface() any {
	return m.Native()
}

// Native converts the map into map[string]any recursively.
func (m Map) Native() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

func (Null) String() string { return "" }

// FromAny converts a decoded YAML or JSON tree into a Value.
//
// Integers of every width become Int, json.Number becomes Int when it parses as
// an integer and Float otherwise, time.Time is carried as an RFC 3339 string and
// mapping keys that are not strings are formatted with fmt.
func FromAny(v any) (Value, error) {
	switch vv := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return vv, nil
	case string:
		return String(vv), nil
	case bool:
		return Bool(vv), nil
	case int:
		return Int(vv), nil
	case int8:
		return Int(vv), nil
	case int16:
		return Int(vv), nil
	case int32:
		return Int(vv), nil
	case int64:
		return Int(vv), nil
	case uint:
		return fromUnsigned(uint64(vv)), nil
	case uint8:
		return Int(vv), nil
	case uint16:
		return Int(vv), nil
	case uint32:
		return Int(vv), nil
	case uint64:
		return fromUnsigned(vv), nil
	case float32:
		return Float(vv), nil
	case float64:
		return Float(vv), nil
	case json.Number:
		if i, err := vv.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := vv.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", vv.String(), err)
		}
		return Float(f), nil
	case time.Time:
		return String(vv.Format(time.RFC3339)), nil
	case []any:
		seq := make(Seq, 0, len(vv))
		for i, item := range vv {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			seq = append(seq, converted)
		}
		return seq, nil
	case map[string]any:
		m := make(Map, len(vv))
		for k, item := range vv {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = converted
		}
		return m, nil
	case map[any]any:
		m := make(Map, len(vv))
		for k, item := range vv {
			key := fmt.Sprint(k)
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			m[key] = converted
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromUnsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// Narrow truncates every Float in the tree to an Int, discarding the fractional part.
func Narrow(v Value) Value {
	switch vv := v.(type) {
	case Float:
		return Int(int64(vv))
	case Seq:
		out := make(Seq, len(vv))
		for i, item := range vv {
			out[i] = Narrow(item)
		}
		return out
	case Map:
		out := make(Map, len(vv))
		for k, item := range vv {
			out[k] = Narrow(item)
		}
		return out
	default:
		return v
	}
}
