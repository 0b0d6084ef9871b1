// Package urlstate mirrors browse state into a shareable URL query string
package urlstate

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"showroom/internal/core/filter"
	"showroom/internal/core/normalize"
	"showroom/internal/core/listing"
	"showroom/internal/core/sorting"
	"showroom/internal/platform/net/http/bind"
	"showroom/internal/services/browse/domain"
)

// URL keys owned by the page
const (
	KeyQuery = "q"
	KeySort  = "sort"
	KeyView  = "view"
	KeySize  = "size"
)

// State is everything a URL can carry
type State struct {
	Filters filter.State
	Sort    sorting.Mode
	View    domain.ViewMode
	Size    int
}

// Codec maps State to and from query strings for one schema
type Codec struct {
	schema      filter.Schema
	defaultSize int
	maxSize     int

	sortTag string
	viewTag string
	enumTag map[string]string
}

// NewCodec validates the schema and builds a codec
func NewCodec(schema filter.Schema, defaultSize, maxSize int) (Codec, error) {
	if err := schema.Validate(); err != nil {
		return Codec{}, err
	}
	c := Codec{
		schema:      schema,
		defaultSize: max(1, defaultSize),
		maxSize:     max(1, defaultSize, maxSize),
		sortTag:     "oneof=" + strings.Join(sorting.Names(), " "),
		enumTag:     map[string]string{},
	}
	views := make([]string, 0, 2)
	for _, v := range domain.ViewModes() {
		views = append(views, string(v))
	}
	c.viewTag = "oneof=" + strings.Join(views, " ")
	for _, f := range schema.Of(filter.Enum) {
		c.enumTag[f.Key] = "oneof=" + strings.Join(f.Allowed, " ")
	}
	return c, nil
}

// Default is the state an empty query string hydrates to
func (c Codec) Default() State {
	return State{Sort: sorting.Default, View: domain.Grid, Size: c.defaultSize}
}

// MaxSize is the largest view size a URL may ask for
func (c Codec) MaxSize() int { return c.maxSize }

// Hydrate reads every recognized parameter. Values outside their domain are
// dropped and the default is kept
func (c Codec) Hydrate(values url.Values) State {
	st := c.Default()

	if q := strings.TrimSpace(normalize.Sanitize(values.Get(KeyQuery))); q != "" && valid(KeyQuery, q, "max=200") {
		st.Filters.Query = q
	}
	if s := values.Get(KeySort); valid(KeySort, s, c.sortTag) {
		st.Sort, _ = sorting.Parse(s)
	}
	if v := values.Get(KeyView); valid(KeyView, v, c.viewTag) {
		st.View = domain.ViewMode(v)
	}
	if n, ok := number(KeySize, values.Get(KeySize)); ok && n >= 1 {
		st.Size = min(int(n), c.maxSize)
	}

	for _, f := range c.schema.Fields {
		switch f.Kind {
		case filter.Range:
			lo, hi := f.Params()
			var b filter.Bound
			if n, ok := number(lo, values.Get(lo)); ok {
				b.Min = &n
			}
			if n, ok := number(hi, values.Get(hi)); ok {
				b.Max = &n
			}
			st.Filters = st.Filters.WithRange(f.Key, b)
		case filter.Enum:
			if v := values.Get(f.Key); valid(f.Key, v, c.enumTag[f.Key]) {
				st.Filters = st.Filters.WithEnum(f.Key, v)
			}
		case filter.Flag:
			if v := values.Get(f.Key); valid(f.Key, v, "oneof=yes no") {
				st.Filters = st.Filters.WithFlag(f.Key, listing.ParseTri(v))
			}
		}
	}
	return st
}

// Serialize writes only values that differ from the defaults, keys sorted
func (c Codec) Serialize(st State) string {
	v := url.Values{}
	if q := strings.TrimSpace(st.Filters.Query); q != "" {
		v.Set(KeyQuery, q)
	}
	if st.Sort != sorting.Default {
		v.Set(KeySort, st.Sort.String())
	}
	if st.View != "" && st.View != domain.Grid {
		v.Set(KeyView, string(st.View))
	}
	if st.Size > 0 && st.Size != c.defaultSize {
		v.Set(KeySize, strconv.Itoa(st.Size))
	}
	for _, f := range c.schema.Fields {
		switch f.Kind {
		case filter.Range:
			b := st.Filters.Ranges[f.Key]
			lo, hi := f.Params()
			b = wholeBound(b)
			if b.Min != nil {
				v.Set(lo, strconv.FormatFloat(*b.Min, 'f', 0, 64))
			}
			if b.Max != nil {
				v.Set(hi, strconv.FormatFloat(*b.Max, 'f', 0, 64))
			}
		case filter.Enum:
			if e := st.Filters.Enums[f.Key]; e != "" && f.Allows(e) {
				v.Set(f.Key, e)
			}
		case filter.Flag:
			if t := st.Filters.Flags[f.Key]; t != listing.Unknown {
				v.Set(f.Key, t.String())
			}
		}
	}
	return v.Encode()
}

// Normalize rewrites range bounds to the values a URL can carry, so state
// set directly matches what a reload hydrates
func (c Codec) Normalize(fs filter.State) filter.State {
	for _, f := range c.schema.Of(filter.Range) {
		if b, ok := fs.Ranges[f.Key]; ok {
			fs = fs.WithRange(f.Key, wholeBound(b))
		}
	}
	return fs
}

// maxBound is the largest bound number() accepts
const maxBound = 999_999_999_999

// wholeBound truncates fractions and clamps negatives to zero; bounds too
// large to hydrate are dropped
func wholeBound(b filter.Bound) filter.Bound {
	whole := func(p *float64) *float64 {
		if p == nil || math.IsNaN(*p) {
			return nil
		}
		n := max(math.Trunc(*p), 0)
		if n > maxBound {
			return nil
		}
		return &n
	}
	return filter.Bound{Min: whole(b.Min), Max: whole(b.Max)}
}

// Parse hydrates from a raw query string. Pairs that do not decode are dropped
func (c Codec) Parse(raw string) State {
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return c.Hydrate(values)
}

func valid(key, v, tag string) bool {
	return v != "" && bind.Var(key, v, tag) == nil
}

// number keeps the digits of s, "1.500 TL" reads as 1500
func number(key, s string) (float64, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if !valid(key, digits, "numeric,max=12") {
		return 0, false
	}
	n, err := strconv.ParseFloat(digits, 64)
	return n, err == nil
}
