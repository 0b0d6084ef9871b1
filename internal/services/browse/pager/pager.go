// Package pager fetches one page of listings at a time from the remote store
package pager

import (
	"context"
	"time"

	perr "showroom/internal/platform/errors"
	"showroom/internal/platform/logger"
	"showroom/internal/platform/metrics"
	"showroom/internal/services/browse/domain"
)

// DefaultFallbackLimit caps the single unsorted page fetched when the store
// has no index for a sorted query
const DefaultFallbackLimit = 500

// Pager wraps a domain.Store with cursor bookkeeping and the missing index fallback
type Pager struct {
	store         domain.Store
	fallbackLimit int
	log           *logger.Logger
	now           func() time.Time
}

// New builds a pager; fallbackLimit <= 0 uses DefaultFallbackLimit
func New(store domain.Store, fallbackLimit int, log *logger.Logger) *Pager {
	if store == nil {
		panic("pager: nil store")
	}
	if fallbackLimit <= 0 {
		fallbackLimit = DefaultFallbackLimit
	}
	if log == nil {
		log = logger.Named("browse-pager")
	}
	return &Pager{store: store, fallbackLimit: fallbackLimit, log: log, now: time.Now}
}

// FetchPage runs one round trip for the page after cur. A page shorter than
// the key's page size is the last one. When the store reports a missing
// composite index the same constraints are fetched once without ordering and
// the page is reported exhausted; the caller re-sorts locally. Other errors
// are returned as is
func (p *Pager) FetchPage(ctx context.Context, key domain.QueryKey, cur domain.Cursor) (domain.Page, error) {
	start := p.now()
	q := key.Query(cur)

	p.log.Debug().Str("key", key.String()).Bool("first", cur.IsStart()).Msg("fetch page")
	recs, err := p.store.Query(ctx, q)
	if err == nil {
		metrics.RecordFetch("ok", p.now().Sub(start))
		page := domain.Page{Records: recs, Next: cur, Exhausted: len(recs) < key.PageSize}
		if n := len(recs); n > 0 {
			page.Next = domain.CursorAfter(recs[n-1])
		}
		return page, nil
	}
	if !perr.IsCode(err, perr.ErrorCodeIndexMissing) {
		metrics.RecordFetch("error", p.now().Sub(start))
		return domain.Page{}, err
	}

	p.log.Warn().Err(err).Str("key", key.String()).Msg("no index for sorted query, fetching one unsorted page")
	metrics.RecordIndexFallback()

	fq := domain.Query{Constraints: key.Constraints, Limit: max(key.PageSize, p.fallbackLimit)}
	recs, err = p.store.Query(ctx, fq)
	if err != nil {
		metrics.RecordFetch("error", p.now().Sub(start))
		return domain.Page{}, err
	}
	metrics.RecordFetch("fallback", p.now().Sub(start))
	return domain.Page{Records: recs, Next: cur, Exhausted: true, Fallback: true}, nil
}
