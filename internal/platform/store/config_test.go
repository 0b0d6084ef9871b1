package store

import (
	"testing"
	"time"

	"showroom/internal/platform/config"
	"showroom/internal/platform/testkit"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://showroom@db/showroom")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "8")

	cfg := FromConfig(config.New(), "showroom-api")
	if cfg.AppName != "showroom-api" || !cfg.PG.Enabled || cfg.PG.URL != "postgres://showroom@db/showroom" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.PG.MaxConns != 8 || cfg.PG.PingTimeout != 3*time.Second || cfg.CH.Enabled {
		t.Fatalf("pg = %+v ch = %+v", cfg.PG, cfg.CH)
	}

	t.Setenv("SERVICE_CLICKHOUSE_ENABLED", "true")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "clickhouse://ch:9000/showroom")
	if cfg := FromConfig(config.New(), "x"); !cfg.CH.Enabled || cfg.CH.URL != "clickhouse://ch:9000/showroom" {
		t.Fatalf("ch = %+v", cfg.CH)
	}
}

func TestFromConfig_RequiresPGURL(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	testkit.MustPanic(t, func() { FromConfig(config.New(), "x") })
}
