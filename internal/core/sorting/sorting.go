// Package sorting orders a filtered working set by one of the fixed browse sort modes
package sorting

import (
	"math"
	"slices"

	"showroom/internal/core/listing"
)

// Mode is a browse sort order
type Mode uint8

const (
	// Newest is descending creation time, the default
	Newest Mode = iota
	// PriceAsc is cheapest first
	PriceAsc
	// PriceDesc is most expensive first
	PriceDesc
)

// Default is the mode used when none is selected
const Default = Newest

var names = [...]string{Newest: "newest", PriceAsc: "priceAsc", PriceDesc: "priceDesc"}

// Modes lists every mode in declaration order
func Modes() []Mode { return []Mode{Newest, PriceAsc, PriceDesc} }

// Names lists the wire names, handy for whitelists
func Names() []string { return slices.Clone(names[:]) }

func (m Mode) String() string {
	if int(m) < len(names) {
		return names[m]
	}
	return "invalid"
}

// Parse maps a wire name back to a Mode
func Parse(s string) (Mode, bool) {
	for i, n := range names {
		if n == s {
			return Mode(i), true
		}
	}
	return Default, false
}

// Remote is the sort clause the store runs for m
func (m Mode) Remote() (field string, desc bool) {
	switch m {
	case PriceAsc:
		return listing.AttrPrice, false
	case PriceDesc:
		return listing.AttrPrice, true
	default:
		return listing.AttrCreatedAt, true
	}
}

// MarshalText encodes the wire name
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText accepts wire names; unknown names fall back to Default
func (m *Mode) UnmarshalText(b []byte) error {
	*m, _ = Parse(string(b))
	return nil
}

// Apply returns a new slice holding records in mode order. Ties keep their
// input order. Missing creation times count as epoch 0 and missing prices
// always sort last
func Apply(records []listing.Record, mode Mode) []listing.Record {
	out := slices.Clone(records)
	switch mode {
	case PriceAsc:
		slices.SortStableFunc(out, func(a, b listing.Record) int {
			return cmpFloat(priceOr(a, math.Inf(1)), priceOr(b, math.Inf(1)))
		})
	case PriceDesc:
		slices.SortStableFunc(out, func(a, b listing.Record) int {
			return cmpFloat(priceOr(b, math.Inf(-1)), priceOr(a, math.Inf(-1)))
		})
	default:
		slices.SortStableFunc(out, func(a, b listing.Record) int {
			return cmpInt(b.CreatedMillis(), a.CreatedMillis())
		})
	}
	return out
}

func priceOr(r listing.Record, missing float64) float64 {
	if p, ok := r.PriceFloat(); ok {
		return p
	}
	return missing
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
