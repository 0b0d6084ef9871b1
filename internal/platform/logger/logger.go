// Package logger owns the process zerolog root and the request scoped
// children handlers log through
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"showroom/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project logging type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level       string
	Format      string // console or json
	Service     string
	Component   string
	Writer      io.Writer
	WithCaller  bool
	SampleEvery int
}

// FromEnv reads LOG_* through the raw view, config itself logs and cannot be used here
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:       strings.ToLower(rc.Get("LEVEL", "debug")),
		Format:      strings.ToLower(rc.Get("FORMAT", "console")),
		Service:     rc.Get("SERVICE", ""),
		Component:   rc.Get("COMPONENT", ""),
		WithCaller:  rc.GetBool("CALLER", false),
		SampleEvery: rc.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger. Only the first call has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		fields := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
		if bi, ok := debug.ReadBuildInfo(); ok {
			fields = fields.Str("go_version", bi.GoVersion)
		}
		if opt.Service != "" {
			fields = fields.Str("service", opt.Service)
		}
		if opt.Component != "" {
			fields = fields.Str("component", opt.Component)
		}
		if opt.WithCaller {
			fields = fields.Caller()
		}

		log := fields.Logger()
		if opt.SampleEvery > 1 {
			log = log.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
		}
		root.Store(&log)
	})
}

// parseLevel falls back to debug for blank or unknown names
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named returns a child tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keySessionID
)

// WithRequest stores the request and browse session ids C adds to every line
func WithRequest(ctx context.Context, reqID, sessionID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	if sessionID != "" {
		ctx = context.WithValue(ctx, keySessionID, sessionID)
	}
	return ctx
}

// Fields returns the ids WithRequest stored on ctx
func Fields(ctx context.Context) (reqID, sessionID string) {
	reqID, _ = ctx.Value(keyRequestID).(string)
	sessionID, _ = ctx.Value(keySessionID).(string)
	return reqID, sessionID
}

// C returns a root child carrying the ids on ctx
func C(ctx context.Context) *Logger {
	fields := Get().With()
	reqID, sessionID := Fields(ctx)
	if reqID != "" {
		fields = fields.Str("request_id", reqID)
	}
	if sessionID != "" {
		fields = fields.Str("session_id", sessionID)
	}
	l := fields.Logger()
	return &l
}
