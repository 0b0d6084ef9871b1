// Package middleware holds adapters and in house middlewares
package middleware

import (
	"net/http"
	"time"

	"showroom/internal/platform/logger"
	"showroom/internal/platform/metrics"
	pnet "showroom/internal/platform/net"

	"github.com/go-chi/chi/v5"
)

// SessionHeader carries a browse session id between client and server
const SessionHeader = "X-Session-ID"

// AccessLogOptions configures the zerolog access log
type AccessLogOptions struct {
	// Slow marks requests taking >= Slow as warn level, 0 disables slow marking
	Slow time.Duration
}

// captureWriter wraps the original ResponseWriter and records status & bytes
type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	if n > 0 {
		cw.bytes += n
	}
	return n, err
}

// AccessLog logs one line per request and feeds the http collectors.
// A session id from SessionHeader is put on the context so handler logs carry it
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid, sid := pnet.RequestID(r.Context()), r.Header.Get(SessionHeader)
			if rid != "" || sid != "" {
				r = r.WithContext(logger.WithRequest(r.Context(), rid, sid))
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			route := routePattern(r)
			metrics.RecordHTTPRequest(r.Method, route, cw.status, elapsed)

			log := logger.C(r.Context())
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}

// routePattern keeps metric cardinality bounded by labelling with the chi pattern
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
