// Package pg opens pgx pools and traces the queries run through them
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is what a pool needs beyond its DSN defaults
type Config struct {
	URL      string
	MaxConns int32
	// AppName shows up as application_name in pg_stat_activity
	AppName string
}

var newPool = pgxpool.NewWithConfig

// Open builds a pool; configure hooks run after Config is applied
func Open(ctx context.Context, cfg Config, configure ...func(*pgxpool.Config)) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	for _, fn := range configure {
		fn(pc)
	}
	return newPool(ctx, pc)
}
