// Package store opens the backends a process is configured for and exposes them as small seams
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"showroom/internal/platform/logger"
	chx "showroom/internal/platform/store/ch"

	"github.com/rs/zerolog"
)

// Store holds the opened backends; a nil seam means the backend is disabled
type Store struct {
	Log logger.Logger
	PG  TxRunner
	CH  Clickhouse
}

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a forward-only result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports the outcome of a write
type CommandTag interface {
	RowsAffected() int64
}

// RowQuerier is the sql surface repos are written against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside a transaction, committing when fn returns nil
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam used for listing rollups
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Close() error
}

// Pinger is implemented by seams that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Option configures Open
type Option func(*Store)

// WithLogger routes backend logs (sql tracing, connect retries) to log
func WithLogger(log logger.Logger) Option { return func(s *Store) { s.Log = log } }

// Open connects every backend enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}

	if cfg.PG.Enabled {
		a, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
		s.PG = a
	}
	if cfg.CH.Enabled {
		c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.AppName})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("store: clickhouse: %w", err)
		}
		s.CH = chAdapter{c}
	}
	return s, nil
}

// Guard pings each open seam that supports it and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil")
	}
	var errs []error
	for _, seam := range []struct {
		name string
		v    any
	}{{"pg", s.PG}, {"ch", s.CH}} {
		if p, ok := seam.v.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", seam.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend
func (s *Store) Close() error {
	var errs []error
	for _, v := range []any{s.CH, s.PG} {
		if c, ok := v.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
