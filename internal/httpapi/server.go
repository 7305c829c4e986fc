package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server is a worker that serves the HTTP surface until its context is
// canceled.
type Server struct {
	port    uint16
	handler http.Handler
}

// NewServer creates an HTTP server worker.
func NewServer(port uint16, handler http.Handler) *Server {
	return &Server{
		port:    port,
		handler: handler,
	}
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.handler,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("http server shutdown", "error", err)
			}
		case <-done:
			// Start returned (likely with error) - nothing to stop
		}
	}()

	slog.InfoContext(ctx, "http server listening", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http on port %d: %w", s.port, err)
	}
	return nil
}
