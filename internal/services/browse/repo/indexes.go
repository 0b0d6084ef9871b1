package repo

import (
	"fmt"
	"slices"
	"strings"

	"showroom/internal/core/listing"
	perr "showroom/internal/platform/errors"
	"showroom/internal/services/browse/domain"
)

// Index is a declared composite index: a set of constrained fields plus the
// field the results are ordered by
type Index struct {
	Fields []string
	Sort   string
}

func (ix Index) String() string { return strings.Join(ix.Fields, "+") + ":" + ix.Sort }

// Indexes is the set of composite indexes the store will serve sorted
// queries from. Sorted queries with constraints on fields other than the
// sort field need an exact match, like hosted document stores do
type Indexes []Index

// ParseIndexes reads "categoryId:createdAt,categoryId+brandId:price"
func ParseIndexes(spec string) (Indexes, error) {
	var out Indexes
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields, sort, ok := strings.Cut(part, ":")
		if !ok || strings.TrimSpace(sort) == "" || strings.TrimSpace(fields) == "" {
			return nil, fmt.Errorf("index %q: want fields:sort", part)
		}
		ix := Index{Sort: strings.TrimSpace(sort)}
		for _, f := range strings.Split(fields, "+") {
			if f = strings.TrimSpace(f); f != "" {
				ix.Fields = append(ix.Fields, f)
			}
		}
		slices.Sort(ix.Fields)
		out = append(out, ix)
	}
	return out, nil
}

// DefaultIndexes mirror the btree indexes created by the migrations
func DefaultIndexes() Indexes {
	ix, _ := ParseIndexes("categoryId:createdAt,categoryId+brandId:createdAt")
	return ix
}

// Check returns an index missing error when no declared index serves q
func (ixs Indexes) Check(q domain.Query) error {
	if !q.Sorted {
		return nil
	}
	var fields []string
	for _, c := range q.Constraints {
		if c.Field != q.SortField && !slices.Contains(fields, c.Field) {
			fields = append(fields, c.Field)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	slices.Sort(fields)
	for _, ix := range ixs {
		if ix.Sort == q.SortField && slices.Equal(ix.Fields, fields) {
			return nil
		}
	}
	return perr.IndexMissingf("no composite index on %s ordered by %s", strings.Join(fields, "+"), orDefault(q.SortField, listing.AttrCreatedAt))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
