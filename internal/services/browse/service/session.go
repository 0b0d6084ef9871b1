// Package service runs browse sessions: one per open listing page
package service

import (
	"context"
	"net/url"
	"sync"
	"time"

	"showroom/internal/core/debounce"
	"showroom/internal/core/filter"
	"showroom/internal/core/listing"
	"showroom/internal/core/sorting"
	"showroom/internal/platform/logger"
	"showroom/internal/platform/metrics"
	ptime "showroom/internal/platform/time"
	"showroom/internal/services/browse/backfill"
	"showroom/internal/services/browse/cache"
	"showroom/internal/services/browse/domain"
	"showroom/internal/services/browse/pager"
	"showroom/internal/services/browse/urlstate"
)

// Deps are the collaborators of a session
type Deps struct {
	Store     domain.Store
	Counter   domain.Counter   // optional
	Navigator domain.Navigator // optional
	Clock     ptime.Clock      // optional, drives the query debounce
	Log       *logger.Logger   // optional

	// Spawn runs fetches off the caller's goroutine; tests pass an inline runner
	Spawn func(func())
}

func (d Deps) clock() ptime.Clock {
	if d.Clock == nil {
		return ptime.System
	}
	return d.Clock
}

// Session is the page level controller. State changes run to completion
// under the session lock; the only waits are remote fetches, which run on
// spawned goroutines and report back under the lock
type Session struct {
	id   string
	opts Options
	deps Deps
	log  *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	pager *pager.Pager
	codec urlstate.Codec
	typed *debounce.Debouncer[string]

	mu       sync.Mutex
	sync     *urlstate.Sync
	cache    *cache.Cache
	ctrl     backfill.Controller
	target   domain.Target
	entered  bool
	filters  filter.State
	sort     sorting.Mode
	viewMode domain.ViewMode
	viewSize int

	key      domain.QueryKey
	keyGen   uint64
	total    *int
	fallback bool

	inflight int
	idle     chan struct{}
	closed   bool
	touched  time.Time
}

// NewSession builds a session bound to ctx. Close releases it
func NewSession(ctx context.Context, id string, opts Options, deps Deps) (*Session, error) {
	opts = opts.normalized()
	codec, err := urlstate.NewCodec(opts.Schema, opts.DefaultViewSize, opts.MaxViewSize)
	if err != nil {
		return nil, err
	}
	if deps.Spawn == nil {
		deps.Spawn = func(f func()) { go f() }
	}
	if deps.Clock == nil {
		deps.Clock = ptime.System
	}
	log := deps.Log
	if log == nil {
		log = logger.Named("browse")
	}
	l := log.With().Str("session_id", id).Logger()

	s := &Session{
		id:       id,
		opts:     opts,
		deps:     deps,
		log:      &l,
		pager:    pager.New(deps.Store, opts.FallbackLimit, &l),
		codec:    codec,
		cache:    cache.New(),
		sort:     sorting.Default,
		viewMode: domain.Grid,
		viewSize: opts.DefaultViewSize,
		touched:  deps.Clock.Now(),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.sync = urlstate.NewSync(codec, deps.Navigator)
	s.typed = debounce.New(deps.Clock, opts.Debounce, s.setQuery)
	return s, nil
}

// ID is the session identifier
func (s *Session) ID() string { return s.id }

// Enter opens target. The URL values are hydrated once per navigation key;
// entering the same target again keeps the current state
func (s *Session) Enter(target domain.Target, values url.Values) {
	s.update(func() {
		if !s.entered || target.Key() != s.target.Key() {
			s.filters = filter.State{}
			s.sort = sorting.Default
			s.viewMode = domain.Grid
			s.viewSize = s.opts.DefaultViewSize
			s.log.Info().Str("target", target.Key()).Msg("browse enter")
		}
		s.target = target
		s.entered = true
		s.sync.Hydrate(target.Key(), values, s.restoreLocked)
	})
}

// Restore replaces filters, sort and layout with what a query string says.
// Invalid values are dropped. The view only grows; ResetFilters shrinks it
func (s *Session) Restore(values url.Values) {
	s.update(func() {
		size := s.viewSize
		s.restoreLocked(s.codec.Hydrate(values))
		s.viewSize = max(size, s.viewSize)
	})
}

func (s *Session) restoreLocked(st urlstate.State) {
	s.filters = st.Filters
	s.sort = st.Sort
	s.viewMode = st.View
	s.viewSize = st.Size
}

// SetFilters applies fn to a copy of the current filters
func (s *Session) SetFilters(fn func(filter.State) filter.State) {
	s.update(func() { s.filters = s.codec.Normalize(fn(s.filters.Clone())) })
}

// TypeQuery feeds free text through the debouncer
func (s *Session) TypeQuery(q string) { s.typed.Push(q) }

// FlushQuery applies pending free text now
func (s *Session) FlushQuery() { s.typed.Flush() }

func (s *Session) setQuery(q string) {
	s.update(func() { s.filters = s.filters.WithQuery(q) })
}

// SetSort changes the order; it is part of the remote key
func (s *Session) SetSort(m sorting.Mode) { s.update(func() { s.sort = m }) }

// SetViewMode switches the layout
func (s *Session) SetViewMode(m domain.ViewMode) { s.update(func() { s.viewMode = m }) }

// LoadMore grows the view by one step
func (s *Session) LoadMore() {
	s.update(func() { s.viewSize = min(s.viewSize+s.opts.ViewStep, s.opts.MaxViewSize) })
}

// SetViewSize grows the view to n; the view never shrinks this way
func (s *Session) SetViewSize(n int) {
	s.update(func() {
		if n = min(n, s.opts.MaxViewSize); n > s.viewSize {
			s.viewSize = n
		}
	})
}

// ResetFilters clears every filter and shrinks the view back to its default
func (s *Session) ResetFilters() {
	s.typed.Cancel()
	s.update(func() {
		s.filters = filter.State{}
		s.viewSize = s.opts.DefaultViewSize
	})
}

// Retry re-runs the backfill decision, which restarts a failed fetch
func (s *Session) Retry() { s.update(func() {}) }

// View renders the current state
func (s *Session) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.deps.Clock.Now()

	matched := sorting.Apply(filter.Apply(s.cache.All(), s.filters, s.opts.Schema), s.sort)
	items := matched[:min(s.viewSize, len(matched))]

	v := domain.View{
		Items:       items,
		Loaded:      s.cache.Len(),
		Matched:     len(matched),
		HasMore:     !s.cache.Exhausted(),
		LoadingMore: s.ctrl.State() == backfill.Fetching,
		Fallback:    s.fallback,
		Target:      s.target,
		Location:    s.locationLocked(),
		Sort:        s.sort,
		ViewMode:    s.viewMode,
		ViewSize:    s.viewSize,
		Filters:     s.filters.Clone(),
	}
	if s.total != nil {
		n := *s.total
		v.Total = &n
	}
	if s.ctrl.State() == backfill.Failed && s.ctrl.Err() != nil {
		v.Error = s.ctrl.Err().Error()
	}
	return v
}

// Settle waits until no fetch or count is running
func (s *Session) Settle(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.inflight == 0 {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels outstanding fetches and discards page state
func (s *Session) Close() {
	s.typed.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.sync.Close()
	s.log.Info().Int("loaded", s.cache.Len()).Msg("browse close")
}

// LastSeen is when the session was last read or changed
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// update runs change under the lock, then reconciles the remote key, the
// backfill decision and the URL, and finally starts any fetches outside the lock
func (s *Session) update(change func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	change()
	s.touched = s.deps.Clock.Now()
	var jobs []func()
	if s.entered {
		jobs = s.reconcileLocked()
		s.pushLocked()
	}
	s.mu.Unlock()
	s.run(jobs)
}

func (s *Session) reconcileLocked() []func() {
	var jobs []func()
	if key := s.remoteKeyLocked(); s.keyGen == 0 || !key.Equal(s.key) {
		s.key = key
		s.keyGen++
		s.cache.Reset()
		s.ctrl.Reset()
		s.total = nil
		s.fallback = false
		s.log.Debug().Str("key", key.String()).Msg("query key changed")
		if s.deps.Counter != nil {
			jobs = append(jobs, s.countJob(s.keyGen, key))
		}
	}
	if job := s.evaluateLocked(); job != nil {
		jobs = append(jobs, job)
	}
	return jobs
}

// remoteKeyLocked derives the part of the state the store evaluates
func (s *Session) remoteKeyLocked() domain.QueryKey {
	cs := s.target.Constraints()
	if s.opts.RemotePrice {
		if f, ok := s.opts.Schema.Field("price"); ok {
			b := s.filters.Ranges[f.Key]
			if b.Min != nil {
				cs = append(cs, domain.Constraint{Field: f.Attr, Op: domain.Gte, Value: listing.Number(*b.Min)})
			}
			if b.Max != nil {
				cs = append(cs, domain.Constraint{Field: f.Attr, Op: domain.Lte, Value: listing.Number(*b.Max)})
			}
		}
	}
	return domain.NewQueryKey(cs, s.sort, s.opts.PageSize)
}

func (s *Session) evaluateLocked() func() {
	matched := len(filter.Apply(s.cache.All(), s.filters, s.opts.Schema))
	gen, start := s.ctrl.Evaluate(backfill.Inputs{
		ViewSize:  s.viewSize,
		Loaded:    s.cache.Len(),
		Matched:   matched,
		Exhausted: s.cache.Exhausted(),
	})
	if !start {
		return nil
	}
	metrics.RecordBackfillFetch()
	s.beginLocked()
	key, cur := s.key, s.cache.Cursor()
	return func() {
		defer s.end()
		page, err := s.pager.FetchPage(s.ctx, key, cur)

		s.mu.Lock()
		var next []func()
		switch {
		case err != nil:
			if s.ctrl.Fail(gen, err) && !s.closed {
				s.log.Warn().Err(err).Str("key", key.String()).Msg("page fetch failed")
			}
		case s.ctrl.Succeed(gen):
			added := s.cache.Absorb(page.Records)
			s.cache.Advance(page.Next, page.Exhausted)
			s.fallback = s.fallback || page.Fallback
			s.log.Debug().Int("added", added).Int("loaded", s.cache.Len()).Int("fetches", s.ctrl.Fetches()).Bool("exhausted", s.cache.Exhausted()).Msg("page absorbed")
			if !s.closed {
				if job := s.evaluateLocked(); job != nil {
					next = append(next, job)
				}
			}
		default:
			s.log.Debug().Str("key", key.String()).Msg("stale page dropped")
		}
		s.mu.Unlock()
		s.run(next)
	}
}

func (s *Session) countJob(gen uint64, key domain.QueryKey) func() {
	s.beginLocked()
	return func() {
		defer s.end()
		n, err := s.deps.Counter.Count(s.ctx, key.Constraints)
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			metrics.RecordCountFailure()
			s.log.Debug().Err(err).Msg("count unavailable")
			return
		}
		if gen == s.keyGen {
			s.total = &n
		}
	}
}

func (s *Session) pushLocked() {
	st := urlstate.State{Filters: s.filters, Sort: s.sort, View: s.viewMode, Size: s.viewSize}
	if _, err := s.sync.Push(s.target.Path(), st); err != nil {
		s.log.Warn().Err(err).Msg("url replace failed")
	}
}

func (s *Session) locationLocked() string {
	q := s.codec.Serialize(urlstate.State{Filters: s.filters, Sort: s.sort, View: s.viewMode, Size: s.viewSize})
	if q == "" {
		return s.target.Path()
	}
	return s.target.Path() + "?" + q
}

func (s *Session) beginLocked() {
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
}

func (s *Session) run(jobs []func()) {
	for _, j := range jobs {
		s.deps.Spawn(j)
	}
}
