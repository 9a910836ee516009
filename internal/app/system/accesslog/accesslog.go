// Package accesslog writes one structured log line per request.
package accesslog

import (
	"net/http"
	"time"

	"github.com/dalemusser/portico/internal/app/system/metrics"
	"github.com/dalemusser/portico/internal/app/system/requestid"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Middleware logs method, path, matched route, status, size and latency.
// 5xx responses are logged at error level, 4xx at warn, the rest at info.
func Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", metrics.RoutePattern(r)),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestid.FromContext(r.Context())),
				zap.String("remote", r.RemoteAddr),
			}
			switch {
			case status >= 500:
				logger.Error("request", fields...)
			case status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}
