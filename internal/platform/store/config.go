package store

import (
	"time"

	"showroom/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	// AppName is reported to the backends as the client role
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs:
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
}

// FromConfig reads backend settings from the root config
// SERVICE_PGSQL_DBURL (required), SERVICE_PGSQL_MAX_CONNS (default 4),
// SERVICE_PGSQL_SLOW_MS (default 500), SERVICE_PGSQL_LOG_SQL (default false)
// SERVICE_CLICKHOUSE_ENABLED (default false) with SERVICE_CLICKHOUSE_DBURL
func FromConfig(root config.Conf, app string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")

	cfg := Config{
		AppName: app,
		PG: PGConfig{
			Enabled:        true,
			URL:            pg.MustString("DBURL"),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
	}
	if ch.MayBool("ENABLED", false) {
		cfg.CH = CHConfig{Enabled: true, URL: ch.MustString("DBURL")}
	}
	return cfg
}
