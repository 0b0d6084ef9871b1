// Package domain holds the browse types shared by the engine, the store and http
package domain

import (
	"slices"
	"strconv"
	"strings"

	"showroom/internal/core/listing"
	"showroom/internal/core/sorting"
)

// Op is a comparison the remote store can evaluate natively
type Op uint8

const (
	// Eq is equality
	Eq Op = iota
	// Gte is greater or equal
	Gte
	// Lte is less or equal
	Lte
)

func (o Op) String() string {
	switch o {
	case Gte:
		return ">="
	case Lte:
		return "<="
	default:
		return "="
	}
}

// Constraint is one remote predicate
type Constraint struct {
	Field string        `json:"field"`
	Op    Op            `json:"op"`
	Value listing.Value `json:"value"`
}

// Equal builds an equality constraint
func Equal(field string, v listing.Value) Constraint {
	return Constraint{Field: field, Op: Eq, Value: v}
}

func (c Constraint) String() string { return c.Field + c.Op.String() + c.Value.Text() }

// Target is the navigation scope of a listing page
type Target struct {
	Category    string `json:"category" validate:"required,slug" example:"watches"`
	SubCategory string `json:"sub_category,omitempty" validate:"omitempty,slug" example:"automatic"`
	Brand       string `json:"brand,omitempty" validate:"omitempty,slug" example:"seiko"`
	Model       string `json:"model,omitempty" validate:"omitempty,slug" example:"presage"`
}

// Key identifies a navigation; state is hydrated from the URL once per key.
// Empty inner segments are kept so a brand without a sub category stays distinct
func (t Target) Key() string {
	return strings.TrimRight(strings.Join([]string{t.Category, t.SubCategory, t.Brand, t.Model}, "/"), "/")
}

// Path is the page location the URL query belongs to
func (t Target) Path() string { return "/browse/" + t.Key() }

// Constraints are the equality predicates implied by the scope
func (t Target) Constraints() []Constraint {
	var out []Constraint
	add := func(field, v string) {
		if v != "" {
			out = append(out, Equal(field, listing.String(v)))
		}
	}
	add(listing.AttrCategoryID, t.Category)
	add(listing.AttrSubCategoryID, t.SubCategory)
	add(listing.AttrBrandID, t.Brand)
	add(listing.AttrModelID, t.Model)
	return out
}

// QueryKey identifies one remote pagination stream. Changing any part of it
// starts over from an empty working set
type QueryKey struct {
	Constraints []Constraint
	Sort        sorting.Mode
	PageSize    int
}

// NewQueryKey builds a key with constraints in canonical order
func NewQueryKey(cs []Constraint, sort sorting.Mode, pageSize int) QueryKey {
	cs = slices.Clone(cs)
	slices.SortStableFunc(cs, func(a, b Constraint) int {
		if c := strings.Compare(a.Field, b.Field); c != 0 {
			return c
		}
		if a.Op != b.Op {
			return int(a.Op) - int(b.Op)
		}
		return strings.Compare(a.Value.Text(), b.Value.Text())
	})
	return QueryKey{Constraints: cs, Sort: sort, PageSize: pageSize}
}

// String is the canonical form, also used as a log field
func (k QueryKey) String() string {
	var b strings.Builder
	for i, c := range k.Constraints {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(c.String())
	}
	b.WriteString("|sort=")
	b.WriteString(k.Sort.String())
	b.WriteString("|size=")
	b.WriteString(strconv.Itoa(k.PageSize))
	return b.String()
}

// Equal compares canonical forms
func (k QueryKey) Equal(o QueryKey) bool { return k.String() == o.String() }

// Query is the sorted request for the page after cur
func (k QueryKey) Query(cur Cursor) Query {
	field, desc := k.Sort.Remote()
	q := Query{
		Constraints: k.Constraints,
		SortField:   field,
		SortDesc:    desc,
		Sorted:      true,
		Limit:       k.PageSize,
	}
	if last, ok := cur.Last(); ok {
		q.After = &last
	}
	return q
}

// Cursor marks where the next page starts: right after the last record seen
type Cursor struct {
	last *listing.Record
}

// CursorAfter returns the cursor following r
func CursorAfter(r listing.Record) Cursor { return Cursor{last: &r} }

// IsStart reports whether the cursor is at the first page
func (c Cursor) IsStart() bool { return c.last == nil }

// Last returns the record the next page follows
func (c Cursor) Last() (listing.Record, bool) {
	if c.last == nil {
		return listing.Record{}, false
	}
	return *c.last, true
}

// Query is one remote round trip. Sorted false means the store may return
// records in any order and After is ignored
type Query struct {
	Constraints []Constraint
	SortField   string
	SortDesc    bool
	Sorted      bool
	Limit       int
	After       *listing.Record
}

// Page is the result of one fetch
type Page struct {
	Records   []listing.Record
	Next      Cursor
	Exhausted bool
	// Fallback is set when the store could not order the query and an
	// unsorted single page was returned instead
	Fallback bool
}
