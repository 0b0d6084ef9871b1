package store

import (
	"context"
	"fmt"
	"time"

	"showroom/internal/platform/logger"
	"showroom/internal/platform/store/pg"
)

const (
	backoffStart = 150 * time.Millisecond
	backoffMax   = 2 * time.Second
)

// openPG opens the pool and waits for postgres to answer before handing it out
func openPG(ctx context.Context, cfg Config, log logger.Logger) (*pgAdapter, error) {
	p, err := pg.Open(ctx, pg.Config{URL: cfg.PG.URL, MaxConns: cfg.PG.MaxConns, AppName: cfg.AppName})
	if err != nil {
		return nil, err
	}

	tracer := pg.Metrics()
	if cfg.PG.LogSQL {
		tracer = pg.Multi(tracer, pg.Tracer(log))
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if err := waitReady(ctx, attempts, timeout, p.Ping, log); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p, tracer, time.Duration(cfg.PG.SlowQueryMs)*time.Millisecond), nil
}

// waitReady calls ping until it succeeds, backing off from 150ms up to 2s between attempts
func waitReady(ctx context.Context, attempts int, timeout time.Duration, ping func(context.Context) error, log logger.Logger) error {
	wait := backoffStart
	var err error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err = ping(pctx)
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Debug().Int("attempt", i).Err(err).Msg("postgres not ready")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait = min(wait*2, backoffMax)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", attempts, err)
}
