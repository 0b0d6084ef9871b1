package urlstate

import (
	"net/url"

	"showroom/internal/services/browse/domain"
)

// Phase is where a page is in its URL lifecycle
type Phase uint8

const (
	// Idle is before hydration or after Close
	Idle Phase = iota
	// Hydrating is while URL values are being written into state
	Hydrating
	// Ready is after hydration; state changes are pushed
	Ready
)

func (p Phase) String() string {
	switch p {
	case Hydrating:
		return "hydrating"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// Sync holds the page scoped URL flags: created when a page is entered,
// reset when the navigation key changes, discarded on Close. The owning
// session serializes access
type Sync struct {
	codec Codec
	nav   domain.Navigator

	phase  Phase
	key    string
	last   string
	closed bool
}

// NewSync builds a Sync; nav may be nil when nothing listens for URL changes
func NewSync(codec Codec, nav domain.Navigator) *Sync {
	return &Sync{codec: codec, nav: nav}
}

// Hydrate writes the URL values into state through apply, once per
// navigation key. A new key resets the flags first. It reports whether
// hydration ran
func (s *Sync) Hydrate(navKey string, values url.Values, apply func(State)) bool {
	if s.closed {
		return false
	}
	if s.key != navKey {
		s.reset(navKey)
	}
	if s.phase != Idle {
		return false
	}
	s.phase = Hydrating
	apply(s.codec.Hydrate(values))
	s.last = values.Encode()
	s.phase = Ready
	return true
}

// Push replaces the current URL with st when ready and when the canonical
// string differs from the one last written
func (s *Sync) Push(path string, st State) (bool, error) {
	if s.phase != Ready || s.closed {
		return false, nil
	}
	q := s.codec.Serialize(st)
	if q == s.last {
		return false, nil
	}
	if s.nav != nil {
		if err := s.nav.Replace(path, q); err != nil {
			return false, err
		}
	}
	s.last = q
	return true, nil
}

// Phase is the current lifecycle phase
func (s *Sync) Phase() Phase { return s.phase }

// Key is the navigation key hydrated last
func (s *Sync) Key() string { return s.key }

// Last is the query string last written or read
func (s *Sync) Last() string { return s.last }

// Close discards the flags; later calls are no-ops
func (s *Sync) Close() {
	s.reset("")
	s.closed = true
}

func (s *Sync) reset(navKey string) {
	s.phase = Idle
	s.key = navKey
	s.last = ""
}
