// Package shutdown centralizes signal handling and graceful HTTP drain
// for the storage service.
package shutdown

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"pagethread/pkg/logger"
)

// DrainTimeout bounds how long in-flight requests may run after a
// shutdown signal before the listener is closed hard.
const DrainTimeout = 10 * time.Second

// Context returns a context canceled on SIGINT/SIGTERM, plus its stop
// function.
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Drain gracefully shuts down an HTTP server, logging the outcome.
func Drain(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), DrainTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http_drain_incomplete", "error", err)
		_ = srv.Close()
		return
	}
	logger.Info("http_drained")
}
