package listing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind tags the dynamic type held by a Value
type Kind uint8

const (
	// KindNull is an absent or null attribute, the zero Value
	KindNull Kind = iota
	// KindBool is a native boolean
	KindBool
	// KindNumber is a float64
	KindNumber
	// KindString is free text
	KindString
)

// Value is one attribute of a listing document. Documents come from a
// schemaless store so the same attribute may be a bool on one record and a
// marked string on the next
type Value struct {
	kind Kind
	b    bool
	f    float64
	s    string
}

// Null returns the absent value
func Null() Value { return Value{} }

// Bool wraps b
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps f
func Number(f float64) Value { return Value{kind: KindNumber, f: f} }

// String wraps s
func String(s string) Value { return Value{kind: KindString, s: s} }

// ValueOf maps a decoded JSON scalar (or a plain Go scalar) to a Value.
// Anything else, including objects and arrays, becomes Null
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return Number(f)
		}
		return String(x.String())
	default:
		return Null()
	}
}

// Kind reports the dynamic type
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent
func (v Value) IsNull() bool { return v.kind == KindNull }

// Empty reports whether the value carries nothing to compare against:
// null, or a string that is blank after trimming
func (v Value) Empty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.s) == ""
	default:
		return false
	}
}

// Text renders the value as text; null renders as ""
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Float returns a finite number. Numeric strings are trimmed and parsed;
// NaN, infinities, booleans and non numeric text report false
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind {
	case KindNumber:
		f = v.f
	case KindString:
		s := strings.TrimSpace(v.s)
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Equal compares kind and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	default:
		return true
	}
}

// Any returns the plain Go scalar for drivers and encoders
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// MarshalJSON encodes the scalar; non finite numbers encode as null
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.f) || math.IsInf(v.f, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON accepts any JSON scalar; objects and arrays decode to Null
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}
