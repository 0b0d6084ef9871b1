package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"showroom/internal/platform/config"
	"showroom/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server pairs a chi mux with the stdlib server that serves it
type Server struct {
	mux *chi.Mux
	srv *stdhttp.Server

	// Drain bounds graceful shutdown once Run's ctx is done
	Drain time.Duration
}

// NewServer listens on API_PORT (default :4000). opts see the mux before any module mounts
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		mux: m,
		srv: &stdhttp.Server{
			Addr:              cfg.MayString("API_PORT", ":4000"),
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
		Drain: 10 * time.Second,
	}
}

// Router returns the mux as a Router
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Run serves until the listener fails or ctx is done. A cancelled ctx
// drains in flight requests and returns nil
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.srv.Addr).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("drain", s.Drain).Msg("http draining")
	sctx, cancel := context.WithTimeout(context.Background(), s.Drain)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}
