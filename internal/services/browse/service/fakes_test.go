package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"showroom/internal/core/listing"
	"showroom/internal/core/sorting"
	perr "showroom/internal/platform/errors"
	"showroom/internal/services/browse/domain"

	"github.com/rs/zerolog"
)

// memStore is a tiny document store: equality and price bounds, keyset
// paging over the requested order, optional missing index refusal
type memStore struct {
	mu      sync.Mutex
	docs    []listing.Record
	queries []domain.Query
	noIndex func(q domain.Query) bool
	fail    error
	gate    chan struct{}
}

func (m *memStore) Query(ctx context.Context, q domain.Query) ([]listing.Record, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	gate, fail := m.gate, m.fail
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail != nil {
		return nil, fail
	}
	if q.Sorted && m.noIndex != nil && m.noIndex(q) {
		return nil, perr.IndexMissingf("composite index required")
	}

	var hits []listing.Record
	for _, d := range m.docs {
		if matches(d, q.Constraints) {
			hits = append(hits, d)
		}
	}
	if q.Sorted {
		mode := sorting.Newest
		if q.SortField == listing.AttrPrice {
			mode = sorting.PriceAsc
			if q.SortDesc {
				mode = sorting.PriceDesc
			}
		}
		hits = sorting.Apply(hits, mode)
		if q.After != nil {
			i := slices.IndexFunc(hits, func(r listing.Record) bool { return r.ID == q.After.ID })
			hits = hits[i+1:]
		}
	}
	if len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

func (m *memStore) calls() []domain.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.queries)
}

func (m *memStore) setFail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func matches(r listing.Record, cs []domain.Constraint) bool {
	for _, c := range cs {
		v := r.Attr(c.Field)
		switch c.Op {
		case domain.Eq:
			if v.Text() != c.Value.Text() {
				return false
			}
		case domain.Gte, domain.Lte:
			f, ok := v.Float()
			want, _ := c.Value.Float()
			if !ok || (c.Op == domain.Gte && f < want) || (c.Op == domain.Lte && f > want) {
				return false
			}
		}
	}
	return true
}

type countFunc func(ctx context.Context, cs []domain.Constraint) (int, error)

func (f countFunc) Count(ctx context.Context, cs []domain.Constraint) (int, error) { return f(ctx, cs) }

// watches builds n listings in category "watches", newest first by index
func watches(n int) []listing.Record {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := make([]listing.Record, n)
	for i := range out {
		out[i] = listing.Record{
			ID:        fmt.Sprintf("w%03d", i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
			Price:     listing.Number(float64(100 + (i*37)%900)),
			Attrs: map[string]listing.Value{
				listing.AttrCategoryID: listing.String("watches"),
				listing.AttrTitle:      listing.String(fmt.Sprintf("watch %d", i)),
				"tradable":             listing.Bool(i%3 == 0),
			},
		}
	}
	return out
}

func quiet() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func inline(f func()) { f() }
