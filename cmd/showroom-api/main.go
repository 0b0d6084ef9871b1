// Command showroom-api serves the browse and meta modules over HTTP
package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"showroom/internal/modkit/httpkit"
	"showroom/internal/modkit/repokit"
	"showroom/internal/platform/config"
	"showroom/internal/platform/logger"
	phttp "showroom/internal/platform/net/http"
	"showroom/internal/platform/store"

	"showroom/internal/services/api"
	browserepo "showroom/internal/services/browse/repo"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		logger.Get().Panic().Err(err).Msg("load .env")
	}
	logger.Init(logger.FromEnv())

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stCfg := store.FromConfig(root, "showroom-api")
	if apiCfg.MayBool("MIGRATE", false) {
		if err := browserepo.Migrate(stCfg.PG.URL); err != nil {
			l.Panic().Err(err).Msg("migrate failed")
		}
		l.Info().Msg("listings schema up to date")
	}

	// open the platform store (postgres + optional CH adapter)
	st, err := store.Open(ctx, stCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast when a configured backend does not answer
	repokit.MustGuard(ctx, st)

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	bg := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
			Stack: httpkit.StackOptions{
				Origins: origins(apiCfg.MayString("CORS_ORIGINS", "")),
				Timeout: apiCfg.MayDuration("TIMEOUT", 30*time.Second),
				Slow:    apiCfg.MayDuration("SLOW_LOG", 2*time.Second),
			},
		},
	)
	go func() {
		if err := bg.Run(ctx); err != nil {
			l.Error().Err(err).Msg("browse sweeper stopped")
		}
	}()

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

// origins splits a comma separated CORS origin list, empty means any
func origins(csv string) []string {
	var out []string
	for _, o := range strings.Split(csv, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
