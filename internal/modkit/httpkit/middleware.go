package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"showroom/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero values pick the defaults noted per field
type StackOptions struct {
	// Origins allowed by CORS, default any
	Origins []string
	// Timeout cancels the request context, default 30s
	Timeout time.Duration
	// Slow requests log at warn, default 2s
	Slow time.Duration
}

// CommonStack is the middleware every versioned route runs behind, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Slow <= 0 {
		o.Slow = 2 * time.Second
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		// logs the status recovery writes, so it must sit outside it
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
