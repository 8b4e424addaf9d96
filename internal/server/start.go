package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long Shutdown waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Start runs the HTTP server until an interrupt or terminate signal is
// received, then shuts it down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves on the configured address until ctx is done or the listener
// fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Relay listening", "addr", s.Cfg.Addr, "difficulty", s.Cfg.Difficulty, "gate", s.Cfg.Gate)
		if err := s.E.Start(s.Cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.closeBackground()
			return err
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown closes every open connection with a going-away status, stops
// accepting requests and then stops the solver pool and event bus.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	err := s.E.Shutdown(ctx)
	s.closeBackground()
	if err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func (s *Server) closeBackground() {
	s.cancel()
	s.Pool.Shutdown()
	if err := s.Bus.Close(); err != nil {
		slog.Warn("Failed to close event bus", "error", err)
	}
}
