// Package http serves the /meta probes and build information
package http

import (
	"context"
	"net/http"
	"time"

	"showroom/internal/core/listing"
	"showroom/internal/core/version"
	"showroom/internal/modkit/httpkit"
	"showroom/internal/platform/store"
)

// Deps are what the meta routes report on
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	// PG and CH are probed on /ready when they implement store.Pinger
	PG, CH any
	// Sessions counts live browse sessions, nil when browse is not mounted
	Sessions func() int
}

// HealthResponse is returned by /health
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

// ReadyCheck is the result of probing one backend: ok, fail or skipped
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadyResponse is ok when every backend answered, degraded when one was skipped
// and fail when one errored
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
}

// EngineResponse reports the browse engine
type EngineResponse struct {
	FlagTokens     string            `json:"flag_tokens"`
	ActiveSessions int               `json:"active_sessions"`
	Build          version.BuildInfo `json:"build"`
}

type handlers struct {
	Deps
	now func() time.Time
}

// Register mounts the meta routes on r
func Register(r httpkit.Router, d Deps) {
	h := &handlers{Deps: d, now: time.Now}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", func(*http.Request) (any, error) { return version.Info(d.ServiceName), nil })
	httpkit.Get(r, "/engine", h.engine)
}

func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.ServiceName,
		Started: h.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.StartedAt) / time.Second),
	}, nil
}

func (h *handlers) ready(r *http.Request) (any, error) {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out := ReadyResponse{Status: "ok"}
	for _, b := range []struct {
		name string
		dep  any
	}{{"pg", h.PG}, {"ch", h.CH}} {
		c := ReadyCheck{Name: b.name, Status: "skipped"}
		if p, ok := b.dep.(store.Pinger); ok {
			c.Status = "ok"
			if err := p.Ping(ctx); err != nil {
				c.Status, c.Error = "fail", err.Error()
			}
		}
		switch {
		case c.Status == "fail":
			out.Status = "fail"
		case c.Status == "skipped" && out.Status == "ok":
			out.Status = "degraded"
		}
		out.Checks = append(out.Checks, c)
	}
	return out, nil
}

func (h *handlers) engine(*http.Request) (any, error) {
	out := EngineResponse{FlagTokens: listing.FlagTokensV1.Version, Build: version.Info(h.ServiceName)}
	if h.Sessions != nil {
		out.ActiveSessions = h.Sessions()
	}
	return out, nil
}
