//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"showroom/internal/platform/testkit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen_Integration(t *testing.T) {
	dsn := testkit.StartPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pool, err := Open(ctx, Config{URL: dsn, MaxConns: 2, AppName: "showroom-pg-it"}, func(pc *pgxpool.Config) { pc.MinConns = 1 })
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `create table scratch (id text primary key, price double precision)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	batch := &pgx.Batch{}
	batch.Queue(`insert into scratch (id, price) values ($1, $2)`, "a", 10.5)
	batch.Queue(`insert into scratch (id, price) values ($1, $2)`, "b", nil)
	if err := pool.SendBatch(ctx, batch).Close(); err != nil {
		t.Fatalf("batch: %v", err)
	}

	type scratch struct {
		ID    string
		Price *float64
	}
	rows, err := pool.Query(ctx, `select id, price from scratch order by id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowToStructByPos[scratch])
	if err != nil || len(got) != 2 || got[0].Price == nil || got[1].Price != nil {
		t.Fatalf("rows = %#v err=%v", got, err)
	}

	var app string
	if err := pool.QueryRow(ctx, `select current_setting('application_name')`).Scan(&app); err != nil || app != "showroom-pg-it" {
		t.Fatalf("application_name = %q err=%v", app, err)
	}
}
