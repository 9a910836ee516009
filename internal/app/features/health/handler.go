package health

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	AppName string
	Started time.Time
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. Uptime is measured from now.
func NewHandler(appName string, logger *zap.Logger) *Handler {
	return &Handler{
		AppName: appName,
		Started: time.Now(),
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status        string `json:"status"`
	App           string `json:"app"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Serve handles GET /health.
//
// The application only routes requests once it is fully configured, so
// reaching this handler is itself the health signal:
//
//	{ "status":"ok", "app":"portico", "uptime_seconds":42 }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{
		Status:        "ok",
		App:           h.AppName,
		UptimeSeconds: int64(time.Since(h.Started).Seconds()),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Log.Warn("health-check: encode failed", zap.Error(err))
	}
}
