package pg

import (
	"context"
	"strings"
	"time"

	"showroom/internal/platform/logger"
	"showroom/internal/platform/metrics"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished round trip
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// Kind is the lowercased leading keyword of the statement, "with" queries count as select
func (e QueryEvent) Kind() string {
	s := strings.TrimSpace(e.SQL)
	if i := strings.IndexAny(s, " \t\n\r("); i > 0 {
		s = s[:i]
	}
	s = strings.ToLower(s)
	switch s {
	case "select", "with":
		return "select"
	case "insert", "update", "delete":
		return s
	case "":
		return "unknown"
	default:
		return "other"
	}
}

// QueryTracer receives query events from the sql adapter
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that ALWAYS prints SQL when LogSQL=true,
// independent of the process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}

	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("kind", ev.Kind()).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// Metrics returns a tracer that observes query latency per statement kind
func Metrics() QueryTracer { return metricsTracer{} }

type metricsTracer struct{}

func (metricsTracer) OnQuery(_ context.Context, ev QueryEvent) {
	metrics.RecordDBQuery(ev.Kind(), time.Duration(ev.ElapsedUS)*time.Microsecond)
}

// Multi fans one event out to every non nil tracer
func Multi(ts ...QueryTracer) QueryTracer {
	out := make(multi, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

type multi []QueryTracer

func (m multi) OnQuery(ctx context.Context, ev QueryEvent) {
	for _, t := range m {
		t.OnQuery(ctx, ev)
	}
}

func compact(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\t' || r == '\r' || r == ' '
	}), " ")
}
