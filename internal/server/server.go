package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faqbot-platform/faqbot/internal/config"
)

type Server struct {
	httpServer *http.Server
}

func New(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:     handler,
			ReadTimeout: 15 * time.Second,
			// WriteTimeout stays 0: chat answers stream token-by-token
			// and can legitimately take longer than any fixed deadline.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start runs the server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully with a 30s drain window.
func (s *Server) Start() error {
	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
