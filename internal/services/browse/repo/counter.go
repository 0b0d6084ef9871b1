package repo

import (
	"context"

	perr "showroom/internal/platform/errors"
	"showroom/internal/services/browse/domain"
)

// FallbackCounter asks Primary first and Fallback when Primary refuses
// the constraints or is unreachable
type FallbackCounter struct {
	Primary  domain.Counter
	Fallback domain.Counter
}

var _ domain.Counter = FallbackCounter{}

// Count implements domain.Counter
func (c FallbackCounter) Count(ctx context.Context, cs []domain.Constraint) (int, error) {
	n, err := c.Primary.Count(ctx, cs)
	switch {
	case err == nil:
		return n, nil
	case perr.IsCode(err, perr.ErrorCodeInvalidArgument), perr.IsCode(err, perr.ErrorCodeUnavailable):
		return c.Fallback.Count(ctx, cs)
	default:
		return 0, err
	}
}
