// Package api provides the HTTP API for the application
package api

import (
	"context"

	"showroom/internal/platform/config"
	"showroom/internal/platform/logger"
	phttp "showroom/internal/platform/net/http"
	"showroom/internal/platform/store"

	"showroom/internal/modkit"
	"showroom/internal/modkit/httpkit"
	"showroom/internal/modkit/module"
	"showroom/internal/modkit/swaggerkit"

	metamod "showroom/internal/services/api/meta/module"
	browsemod "showroom/internal/services/browse/module"
)

// Options are the API options
type Options struct {
	// Config is the root config; modules pick their own prefixes
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
	// Stack tunes the middleware in front of /api/v1
	Stack httpkit.StackOptions
}

// Background is work that runs next to the server until ctx is done
type Background interface {
	Run(ctx context.Context) error
}

// Mount mounts the API service onto the given router and returns the
// background work the mounted modules need
func Mount(r phttp.Router, opt Options) Background {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	browse := browsemod.NewWith(deps, browsemod.FromConfig(opt.Config))

	mods := []module.Module{
		metamod.New(deps).WithSessions(liveSessions),
		browse,
	}

	// swagger, profiler and metrics stay outside the versioned stack
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	phttp.MountMetrics(r, "/metrics", opt.EnableMetrics)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
	return browse
}

// liveSessions reads the browse session count through the port registry
func liveSessions() int {
	p, ok := module.PortsAs[browsemod.Ports]("browse")
	if !ok || p.Sessions == nil {
		return 0
	}
	return p.Sessions.Len()
}
