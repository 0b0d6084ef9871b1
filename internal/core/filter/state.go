package filter

import (
	"maps"
	"strings"

	"showroom/internal/core/listing"
)

// Bound is a numeric range with independently optional ends
type Bound struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Between builds a closed bound
func Between(lo, hi float64) Bound { return Bound{Min: &lo, Max: &hi} }

// AtLeast builds a bound with only a lower end
func AtLeast(lo float64) Bound { return Bound{Min: &lo} }

// AtMost builds a bound with only an upper end
func AtMost(hi float64) Bound { return Bound{Max: &hi} }

// IsZero reports whether neither end is set
func (b Bound) IsZero() bool { return b.Min == nil && b.Max == nil }

// Equal compares the ends by value
func (b Bound) Equal(o Bound) bool { return eqPtr(b.Min, o.Min) && eqPtr(b.Max, o.Max) }

func (b Bound) clone() Bound {
	var out Bound
	if b.Min != nil {
		v := *b.Min
		out.Min = &v
	}
	if b.Max != nil {
		v := *b.Max
		out.Max = &v
	}
	return out
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// State is the user's current filter selection. Every entry is optional and a
// missing or empty entry never constrains anything
type State struct {
	Query  string                 `json:"query,omitempty"`
	Ranges map[string]Bound       `json:"ranges,omitempty"`
	Enums  map[string]string      `json:"enums,omitempty"`
	Flags  map[string]listing.Tri `json:"flags,omitempty"`
}

// Clone deep copies s
func (s State) Clone() State {
	out := State{Query: s.Query}
	if len(s.Ranges) > 0 {
		out.Ranges = make(map[string]Bound, len(s.Ranges))
		for k, b := range s.Ranges {
			out.Ranges[k] = b.clone()
		}
	}
	if len(s.Enums) > 0 {
		out.Enums = maps.Clone(s.Enums)
	}
	if len(s.Flags) > 0 {
		out.Flags = maps.Clone(s.Flags)
	}
	return out
}

// IsZero reports whether s constrains nothing
func (s State) IsZero() bool { return s.Equal(State{}) }

// Equal compares the active constraints only, so an explicit empty entry
// equals a missing one
func (s State) Equal(o State) bool {
	if strings.TrimSpace(s.Query) != strings.TrimSpace(o.Query) {
		return false
	}
	a, b := s.active(), o.active()
	return maps.EqualFunc(a.Ranges, b.Ranges, Bound.Equal) &&
		maps.Equal(a.Enums, b.Enums) &&
		maps.Equal(a.Flags, b.Flags)
}

// active drops empty entries
func (s State) active() State {
	out := State{Ranges: map[string]Bound{}, Enums: map[string]string{}, Flags: map[string]listing.Tri{}}
	for k, b := range s.Ranges {
		if !b.IsZero() {
			out.Ranges[k] = b
		}
	}
	for k, v := range s.Enums {
		if v != "" {
			out.Enums[k] = v
		}
	}
	for k, v := range s.Flags {
		if v != listing.Unknown {
			out.Flags[k] = v
		}
	}
	return out
}

// WithQuery returns a copy with the free text replaced
func (s State) WithQuery(q string) State {
	out := s.Clone()
	out.Query = q
	return out
}

// WithRange returns a copy with key's bound replaced; a zero bound clears it
func (s State) WithRange(key string, b Bound) State {
	out := s.Clone()
	if b.IsZero() {
		delete(out.Ranges, key)
		return out
	}
	if out.Ranges == nil {
		out.Ranges = map[string]Bound{}
	}
	out.Ranges[key] = b.clone()
	return out
}

// WithEnum returns a copy with key's selection replaced; "" clears it
func (s State) WithEnum(key, v string) State {
	out := s.Clone()
	if v == "" {
		delete(out.Enums, key)
		return out
	}
	if out.Enums == nil {
		out.Enums = map[string]string{}
	}
	out.Enums[key] = v
	return out
}

// WithFlag returns a copy with key's selection replaced; Unknown clears it
func (s State) WithFlag(key string, t listing.Tri) State {
	out := s.Clone()
	if t == listing.Unknown {
		delete(out.Flags, key)
		return out
	}
	if out.Flags == nil {
		out.Flags = map[string]listing.Tri{}
	}
	out.Flags[key] = t
	return out
}
