//go:build integration_pg

package store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"showroom/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func openTestAdapter(t *testing.T, ctx context.Context) *pgAdapter {
	t.Helper()
	a, err := openPG(ctx, Config{PG: PGConfig{URL: testkit.StartPostgres(t), MaxConns: 2, LogSQL: true}}, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("openPG: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSQLAdapter_Integration_ExecQuery(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	a := openTestAdapter(t, ctx)

	if _, err := a.Exec(ctx, `CREATE TABLE adapter_scratch (id TEXT PRIMARY KEY, created_at TIMESTAMPTZ NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if _, err := a.Exec(ctx, `INSERT INTO adapter_scratch VALUES ($1, $2), ($3, $4)`, "l-1", now, "l-2", now.Add(-time.Hour)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := Scalar[int64](ctx, a, `SELECT count(*) FROM adapter_scratch`)
	if err != nil || n != 2 {
		t.Fatalf("count = %d err=%v", n, err)
	}

	rs, err := a.Query(ctx, `SELECT id, created_at FROM adapter_scratch ORDER BY created_at DESC`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rs.Close()
	var ids []string
	for rs.Next() {
		var id string
		var at time.Time
		if err := rs.Scan(&id, &at); err != nil {
			t.Fatalf("scan: %v", err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 2 || ids[0] != "l-1" {
		t.Fatalf("order = %v", ids)
	}
	if err := a.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSQLAdapter_Integration_TxCommitAndRollback(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	a := openTestAdapter(t, ctx)

	if _, err := a.Exec(ctx, `CREATE TABLE adapter_tx (id SERIAL PRIMARY KEY, val INT NOT NULL)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := a.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx, `INSERT INTO adapter_tx (val) VALUES (10)`)
		return err
	}); err != nil {
		t.Fatalf("tx commit: %v", err)
	}

	errRollback := errors.New("rollback")
	if err := a.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO adapter_tx (val) VALUES (20)`); err != nil {
			return err
		}
		return errRollback
	}); !errors.Is(err, errRollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	var committed, rolledBack int
	_ = a.QueryRow(ctx, `SELECT count(*) FROM adapter_tx WHERE val=10`).Scan(&committed)
	_ = a.QueryRow(ctx, `SELECT count(*) FROM adapter_tx WHERE val=20`).Scan(&rolledBack)
	if committed != 1 || rolledBack != 0 {
		t.Fatalf("committed=%d rolledBack=%d", committed, rolledBack)
	}
}
