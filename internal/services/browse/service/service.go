package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	perr "showroom/internal/platform/errors"
	"showroom/internal/platform/logger"
	"showroom/internal/platform/metrics"
	"showroom/internal/services/browse/domain"

	"github.com/google/uuid"
)

// Service defines the browse service contract
type Service interface {
	domain.ServicePort
}

// Svc keeps live sessions in memory and evicts the idle ones
type Svc struct {
	opts Options
	deps Deps
	ttl  time.Duration
	log  *logger.Logger

	base  context.Context
	newID func() string

	mu       sync.Mutex
	sessions map[string]*Session
}

var _ Service = (*Svc)(nil)

// New constructs the browse service. Sessions live on base, not on the
// request that opened them
func New(base context.Context, opts Options, deps Deps, ttl time.Duration) *Svc {
	if deps.Store == nil {
		panic("browse.Service requires a non nil Store")
	}
	if deps.Log == nil {
		deps.Log = logger.Named("browse")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Svc{
		opts:     opts,
		deps:     deps,
		ttl:      ttl,
		log:      deps.Log,
		base:     base,
		newID:    uuid.NewString,
		sessions: map[string]*Session{},
	}
}

// Browse renders a target once without keeping a session
func (s *Svc) Browse(ctx context.Context, t domain.Target, query string) (domain.View, error) {
	values := parseQuery(query)
	deps := s.deps
	deps.Navigator = nil
	sess, err := NewSession(ctx, "", s.opts, deps)
	if err != nil {
		return domain.View{}, err
	}
	defer sess.Close()
	sess.Enter(t, values)
	return settled(ctx, sess)
}

// Open starts a session
func (s *Svc) Open(ctx context.Context, in domain.OpenInput) (domain.Opened, error) {
	values := parseQuery(in.Query)
	id := s.newID()
	sess, err := NewSession(s.base, id, s.opts, s.deps)
	if err != nil {
		return domain.Opened{}, err
	}
	s.mu.Lock()
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.SetSessionsActive(n)

	sess.Enter(in.Target, values)
	v, err := settled(ctx, sess)
	if err != nil {
		return domain.Opened{}, err
	}
	return domain.Opened{ID: id, View: v}, nil
}

// View renders a session after its fetches settle
func (s *Svc) View(ctx context.Context, id string) (domain.View, error) {
	return s.with(ctx, id, func(*Session) {})
}

// More grows a session's view by one step
func (s *Svc) More(ctx context.Context, id string) (domain.View, error) {
	return s.with(ctx, id, (*Session).LoadMore)
}

// Restore re-hydrates a session from a query string
func (s *Svc) Restore(ctx context.Context, id string, in domain.StateInput) (domain.View, error) {
	values := parseQuery(in.Query)
	return s.with(ctx, id, func(sess *Session) { sess.Restore(values) })
}

// Retry restarts a failed fetch
func (s *Svc) Retry(ctx context.Context, id string) (domain.View, error) {
	return s.with(ctx, id, (*Session).Retry)
}

// Close ends a session
func (s *Svc) Close(_ context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return perr.NotFoundf("browse session %s not found", id)
	}
	metrics.SetSessionsActive(n)
	sess.Close()
	return nil
}

// Get returns a live session
func (s *Svc) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, perr.NotFoundf("browse session %s not found", id)
	}
	return sess, nil
}

// Len is the number of live sessions
func (s *Svc) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle for longer than the ttl and reports how many
func (s *Svc) Sweep() int {
	now := s.deps.clock().Now()
	var stale []*Session

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen()) > s.ttl {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	if len(stale) > 0 {
		metrics.SetSessionsActive(n)
		s.log.Info().Int("evicted", len(stale)).Int("active", n).Msg("browse sessions swept")
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is done, then closes the rest
func (s *Svc) Run(ctx context.Context) error {
	tick := time.NewTicker(max(time.Second, s.ttl/2))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return nil
		case <-tick.C:
			s.Sweep()
		}
	}
}

func (s *Svc) closeAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = map[string]*Session{}
	s.mu.Unlock()
	for _, sess := range all {
		sess.Close()
	}
	metrics.SetSessionsActive(0)
}

func (s *Svc) with(ctx context.Context, id string, fn func(*Session)) (domain.View, error) {
	sess, err := s.Get(id)
	if err != nil {
		return domain.View{}, err
	}
	fn(sess)
	return settled(ctx, sess)
}

func settled(ctx context.Context, sess *Session) (domain.View, error) {
	if err := sess.Settle(ctx); err != nil {
		return domain.View{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "browse settle")
	}
	return sess.View(), nil
}

// parseQuery keeps every pair that decodes; malformed pairs are dropped
func parseQuery(raw string) url.Values {
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return values
}
