package filter

import (
	"strings"

	"showroom/internal/core/listing"
	"showroom/internal/core/normalize"
)

// Apply returns the records that pass every active constraint of st, in
// input order. Per record the checks run free text, ranges, enums, flags and
// stop at the first failure. Keys the schema does not declare are ignored
func Apply(records []listing.Record, st State, schema Schema) []listing.Record {
	p := compile(st, schema)
	out := make([]listing.Record, 0, len(records))
	for _, r := range records {
		if p.match(r) {
			out = append(out, r)
		}
	}
	return out
}

type rangeCheck struct {
	attr string
	b    Bound
}

type enumCheck struct {
	attr string
	want string
}

type flagCheck struct {
	attr string
	want listing.Tri
}

// plan is st resolved against the schema once per Apply
type plan struct {
	text   []string
	query  string
	ranges []rangeCheck
	enums  []enumCheck
	flags  []flagCheck
}

func compile(st State, schema Schema) plan {
	p := plan{text: schema.Text, query: normalize.Fold(st.Query)}
	for _, f := range schema.Fields {
		switch f.Kind {
		case Range:
			if b, ok := st.Ranges[f.Key]; ok && !b.IsZero() {
				p.ranges = append(p.ranges, rangeCheck{attr: f.Attr, b: b})
			}
		case Enum:
			if v := strings.TrimSpace(st.Enums[f.Key]); v != "" {
				p.enums = append(p.enums, enumCheck{attr: f.Attr, want: v})
			}
		case Flag:
			if t := st.Flags[f.Key]; t != listing.Unknown {
				p.flags = append(p.flags, flagCheck{attr: f.Attr, want: t})
			}
		}
	}
	return p
}

func (p plan) match(r listing.Record) bool {
	if p.query != "" && !strings.Contains(normalize.Fold(p.haystack(r)), p.query) {
		return false
	}
	for _, c := range p.ranges {
		v, ok := r.Attr(c.attr).Float()
		if !ok {
			return false
		}
		if c.b.Min != nil && v < *c.b.Min {
			return false
		}
		if c.b.Max != nil && v > *c.b.Max {
			return false
		}
	}
	for _, c := range p.enums {
		v := r.Attr(c.attr)
		if v.Empty() || strings.TrimSpace(v.Text()) != c.want {
			return false
		}
	}
	for _, c := range p.flags {
		if listing.Flag(r.Attr(c.attr)) != c.want {
			return false
		}
	}
	return true
}

func (p plan) haystack(r listing.Record) string {
	parts := make([]string, 0, len(p.text))
	for _, a := range p.text {
		if t := r.Attr(a).Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
