// Package health runs a tiny HTTP listener so hosting platforms can probe
// liveness.
package health

import (
	"context"
	"net/http"
	"time"

	"premiumbot/core/logger"
	"log/slog"
)

// Server answers GET / with a static OK body.
type Server struct {
	srv *http.Server
}

// New builds a health server bound to addr (e.g. ":10000").
func New(addr string) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Bot is running! 🚀"))
	})
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in a background goroutine. Listen errors other than a clean
// shutdown are logged, not fatal: the bot keeps running without probes.
func (s *Server) Start() {
	go func() {
		logger.L.LogAttrs(logger.Background(), slog.LevelInfo, "health.listen",
			slog.String("listen", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L.LogAttrs(logger.Background(), slog.LevelError, "health.listen.failed",
				slog.String("listen", s.srv.Addr),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
