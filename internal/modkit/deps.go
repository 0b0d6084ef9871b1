// Package modkit provides module wiring and core deps
package modkit

import (
	"showroom/internal/modkit/repokit"
	"showroom/internal/platform/config"
	"showroom/internal/platform/logger"
	"showroom/internal/platform/store"
	ptime "showroom/internal/platform/time"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse

	// Clock drives timers inside modules, nil means the wall clock
	Clock ptime.Clock
}

// Now returns the configured clock or the system one
func (d Deps) Now() ptime.Clock {
	if d.Clock == nil {
		return ptime.System
	}
	return d.Clock
}
