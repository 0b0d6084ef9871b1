// Package cache accumulates the working set of one remote query
package cache

import (
	"slices"

	"showroom/internal/core/listing"
	"showroom/internal/services/browse/domain"
)

// Cache is an append only, id deduplicated record set plus the pagination
// position it was fetched up to. It is not safe for concurrent use; the
// owning session serializes access
type Cache struct {
	records   []listing.Record
	seen      map[string]struct{}
	cursor    domain.Cursor
	exhausted bool
}

// New returns an empty cache
func New() *Cache { return &Cache{seen: map[string]struct{}{}} }

// Reset drops records, cursor and exhaustion
func (c *Cache) Reset() {
	c.records = nil
	c.seen = map[string]struct{}{}
	c.cursor = domain.Cursor{}
	c.exhausted = false
}

// Absorb appends records not seen before and returns how many were new.
// A repeated id keeps the first copy
func (c *Cache) Absorb(rs []listing.Record) int {
	n := 0
	for _, r := range rs {
		if _, dup := c.seen[r.ID]; dup {
			continue
		}
		c.seen[r.ID] = struct{}{}
		c.records = append(c.records, r)
		n++
	}
	return n
}

// Advance moves the cursor. Exhaustion is sticky until Reset
func (c *Cache) Advance(next domain.Cursor, exhausted bool) {
	c.cursor = next
	c.exhausted = c.exhausted || exhausted
}

// All returns the working set in first seen order. The slice is clipped so
// appends by the caller never reach the cache
func (c *Cache) All() []listing.Record { return slices.Clip(c.records) }

// Cursor is where the next page starts
func (c *Cache) Cursor() domain.Cursor { return c.cursor }

// Exhausted reports whether no further pages exist
func (c *Cache) Exhausted() bool { return c.exhausted }

// Len is the working set size
func (c *Cache) Len() int { return len(c.records) }

