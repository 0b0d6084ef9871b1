// Package filter evaluates browse filter state against a working set of listings
package filter

import (
	"fmt"
	"regexp"

	"showroom/internal/core/listing"
)

// Kind is the predicate shape of a field
type Kind uint8

const (
	// Range is a numeric min/max pair
	Range Kind = iota + 1
	// Enum is a closed single select
	Enum
	// Flag is a yes/no/unset selection over a coerced attribute
	Flag
)

func (k Kind) String() string {
	switch k {
	case Range:
		return "range"
	case Enum:
		return "enum"
	case Flag:
		return "flag"
	default:
		return "invalid"
	}
}

// Field declares one filterable attribute of a listing page variant
type Field struct {
	Key     string
	Attr    string
	Kind    Kind
	Allowed []string

	// MinParam and MaxParam override the URL names of a range's bounds
	MinParam string
	MaxParam string
}

// Params returns the URL names of a range's bounds
func (f Field) Params() (lo, hi string) {
	lo, hi = f.MinParam, f.MaxParam
	if lo == "" {
		lo = f.Key + "_min"
	}
	if hi == "" {
		hi = f.Key + "_max"
	}
	return lo, hi
}

// Allows reports whether v is one of an enum's values
func (f Field) Allows(v string) bool {
	for _, a := range f.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Schema is the set of fields one page variant can filter on, plus the
// attributes free text is matched against
type Schema struct {
	Text   []string
	Fields []Field
}

// Reserved are URL keys owned by the page itself
var Reserved = []string{"q", "sort", "view", "size"}

var slugRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate rejects schemas whose URL names collide or whose enum values could
// not survive a round trip through a query string
func (s Schema) Validate() error {
	seen := make(map[string]string, len(s.Fields)*2+len(Reserved))
	for _, r := range Reserved {
		seen[r] = "reserved"
	}
	claim := func(name, owner string) error {
		if !slugRe.MatchString(name) {
			return fmt.Errorf("filter: %s: bad url name %q", owner, name)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("filter: %s: url name %q already used by %s", owner, name, prev)
		}
		seen[name] = owner
		return nil
	}

	for _, f := range s.Fields {
		if f.Key == "" || f.Attr == "" {
			return fmt.Errorf("filter: field needs key and attr: %+v", f)
		}
		switch f.Kind {
		case Range:
			lo, hi := f.Params()
			if err := claim(lo, f.Key); err != nil {
				return err
			}
			if err := claim(hi, f.Key); err != nil {
				return err
			}
		case Enum:
			if len(f.Allowed) == 0 {
				return fmt.Errorf("filter: enum %s has no values", f.Key)
			}
			for _, v := range f.Allowed {
				if !slugRe.MatchString(v) {
					return fmt.Errorf("filter: enum %s: bad value %q", f.Key, v)
				}
			}
			if err := claim(f.Key, f.Key); err != nil {
				return err
			}
		case Flag:
			if err := claim(f.Key, f.Key); err != nil {
				return err
			}
		default:
			return fmt.Errorf("filter: field %s: unknown kind %d", f.Key, f.Kind)
		}
	}
	return nil
}

// Field looks a field up by key
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Of returns the fields of one kind in declaration order
func (s Schema) Of(k Kind) []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// DefaultSchema is the marketplace listing page: watches, bags and the like
func DefaultSchema() Schema {
	return Schema{
		Text: []string{listing.AttrTitle, listing.AttrCategoryLabel, listing.AttrSubCategoryLabel},
		Fields: []Field{
			{Key: "price", Attr: listing.AttrPrice, Kind: Range, MinParam: "min", MaxParam: "max"},
			{Key: "year", Attr: "year", Kind: Range},
			{Key: "condition", Attr: "condition", Kind: Enum, Allowed: []string{"new", "like-new", "used", "for-parts"}},
			{Key: "gender", Attr: "gender", Kind: Enum, Allowed: []string{"men", "women", "unisex"}},
			{Key: "movement", Attr: "movement", Kind: Enum, Allowed: []string{"automatic", "manual", "quartz", "solar"}},
			{Key: "tradable", Attr: "tradable", Kind: Flag},
			{Key: "shipping", Attr: "shipping", Kind: Flag},
		},
	}
}
