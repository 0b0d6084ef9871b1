// Package module mounts the meta routes under /meta
package module

import (
	"time"

	modkit "showroom/internal/modkit"
	"showroom/internal/modkit/httpkit"
	str "showroom/internal/platform/strings"
	metahttp "showroom/internal/services/api/meta/http"
)

// Module is the meta feature module; it exports no ports
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New builds the module, named "meta" and prefixed "/meta" unless opts say otherwise
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	return &Module{
		b: modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...),
		deps: metahttp.Deps{
			ServiceName: "showroom-api",
			StartedAt:   time.Now(),
			PG:          deps.PG,
			CH:          deps.CH,
		},
	}
}

// WithSessions reports live browse sessions on /meta/engine
func (m *Module) WithSessions(fn func() int) *Module {
	m.deps.Sessions = fn
	return m
}

func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, str.MustPrefix(m.b.Prefix), m.b.Mw, func(r httpkit.Router) {
		metahttp.Register(r, m.deps)
		m.b.Register(r)
	})
}

func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

func (m *Module) Ports() any { return nil }
