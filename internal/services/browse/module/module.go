// Package module wires browse into the API using modkit
package module

import (
	"context"

	modkit "showroom/internal/modkit"
	"showroom/internal/modkit/httpkit"
	"showroom/internal/modkit/repokit"
	"showroom/internal/platform/logger"
	str "showroom/internal/platform/strings"
	"showroom/internal/services/browse/domain"
	browsehttp "showroom/internal/services/browse/http"
	browserepo "showroom/internal/services/browse/repo"
	browsesvc "showroom/internal/services/browse/service"
)

// Module implements the browse module
type Module struct {
	b     modkit.Built
	ports Ports
	svc   *browsesvc.Svc
}

// New constructs the browse module; it reads CORE_BROWSE_* from deps.Cfg
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	return NewWith(deps, FromConfig(deps.Cfg), opts...)
}

// NewWith constructs the browse module with explicit options
func NewWith(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("browse"), modkit.WithPrefix("/browse")}, opts...)...)

	log := logger.Named("browse")
	r := repokit.MustBind(browserepo.NewPG(o.Indexes), deps.PG)

	var counter domain.Counter = r
	if o.Counts == CountsCH && deps.CH != nil {
		counter = browserepo.FallbackCounter{Primary: browserepo.NewCHCounter(deps.CH), Fallback: r}
	}

	svc := browsesvc.New(context.Background(), o.Service, browsesvc.Deps{
		Store:   r,
		Counter: counter,
		Clock:   deps.Now(),
		Log:     log,
	}, o.SessionTTL)

	return &Module{b: b, ports: Ports{Browse: svc, Sessions: svc}, svc: svc}
}

// MountRoutes mounts the browse routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.b.Prefix), m.b.Mw, func(r httpkit.Router) {
		browsehttp.Register(r, m.svc)
		m.b.Register(r)
	})
}

// Run evicts idle sessions until ctx is done
func (m *Module) Run(ctx context.Context) error { return m.svc.Run(ctx) }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }
