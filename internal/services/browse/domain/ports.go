package domain

import (
	"context"

	"showroom/internal/core/listing"
)

// Store runs one paginated listing query
type Store interface {
	Query(ctx context.Context, q Query) ([]listing.Record, error)
}

// Counter reports how many listings match; best effort
type Counter interface {
	Count(ctx context.Context, cs []Constraint) (int, error)
}

// Navigator replaces the current history entry without adding a new one
type Navigator interface {
	Replace(path, query string) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path, query string) error

// Replace calls f
func (f NavigatorFunc) Replace(path, query string) error { return f(path, query) }
