package store

import (
	"context"
	"time"

	"showroom/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what *pgxpool.Pool and pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pool is the *pgxpool.Pool surface the adapter drives
type pool interface {
	pgxQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// traced runs queries on q and reports each one to tracer
type traced struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slow   time.Duration
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.observe(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return ct, nil
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.observe(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// QueryRow reports once Scan returns, since pgx defers the error until then
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return scanHook{Row: t.q.QueryRow(ctx, sql, args...), done: func(err error) {
		t.observe(ctx, sql, args, start, err)
	}}
}

func (t traced) observe(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	d := time.Since(start)
	t.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:       sql,
		Args:      args,
		ElapsedUS: d.Microseconds(),
		Err:       err,
		Slow:      t.slow > 0 && d >= t.slow,
	})
}

type scanHook struct {
	Row
	done func(error)
}

func (h scanHook) Scan(dest ...any) error {
	err := h.Row.Scan(dest...)
	h.done(err)
	return err
}

// pgAdapter is the TxRunner over a pgx pool
type pgAdapter struct {
	traced
	pool pool
}

func newPGAdapter(p pool, tracer pg.QueryTracer, slow time.Duration) *pgAdapter {
	return &pgAdapter{traced: traced{q: p, tracer: tracer, slow: slow}, pool: p}
}

// Tx commits when fn returns nil and rolls back otherwise; queries inside are traced too
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		return fn(traced{q: tx, tracer: a.tracer, slow: a.slow})
	})
}

func (a *pgAdapter) Ping(ctx context.Context) error { return a.pool.Ping(ctx) }

func (a *pgAdapter) Close() error { a.pool.Close(); return nil }
