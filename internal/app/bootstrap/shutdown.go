// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/portico/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// NewServer wraps app in an http.Server using the configured timeouts.
func NewServer(addr string, app *Application, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           app,
		ReadHeaderTimeout: timeouts.ReadHeader(),
		ReadTimeout:       timeouts.Read(),
		WriteTimeout:      timeouts.Write(),
		IdleTimeout:       timeouts.Idle(),
		ErrorLog:          zap.NewStdLog(logger),
	}
}

// Serve runs srv until ctx is cancelled, then drains in-flight requests for
// up to timeouts.Shutdown().
func Serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	return Shutdown(srv, logger)
}

// Shutdown gracefully stops srv.
func Shutdown(srv *http.Server, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown())
	defer cancel()

	logger.Info("shutting down", zap.Duration("grace", timeouts.Shutdown()))
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
