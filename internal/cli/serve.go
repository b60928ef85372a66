package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/ikenthis/bmsagent/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

// Handler builds the HTTP API for the stack.
func (s *Stack) Handler() http.Handler {
	opts := []httpadapter.Option{httpadapter.WithLogger(s.Logger)}
	if s.Config.Server.Metrics {
		opts = append(opts, httpadapter.WithMetrics(s.Registry))
	}
	return httpadapter.NewHandler(s.Agent, s.Sessions, opts...)
}

// Serve runs the HTTP API on addr until ctx is cancelled, then drains
// outstanding requests.
func Serve(ctx context.Context, stack *Stack, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           stack.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		stack.Logger.Info("HTTP server listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		stack.Logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			stack.Logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	}
}
