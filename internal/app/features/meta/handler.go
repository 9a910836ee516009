// Package meta serves information about the running application itself.
package meta

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Version is stamped at build time with
// -ldflags "-X github.com/dalemusser/portico/internal/app/features/meta.Version=...".
var Version = "dev"

// Route is one row of the route listing.
type Route struct {
	Group    string `json:"group"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Shadowed bool   `json:"shadowed,omitempty"`
}

// Handler holds what the meta endpoints report.
type Handler struct {
	AppName string
	Started time.Time
	Routes  func() []Route
	Log     *zap.Logger
}

func NewHandler(appName string, routes func() []Route, logger *zap.Logger) *Handler {
	return &Handler{
		AppName: appName,
		Started: time.Now().UTC(),
		Routes:  routes,
		Log:     logger,
	}
}

type versionResponse struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// ServeVersion handles GET /version.
func (h *Handler) ServeVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, versionResponse{
		Name:      h.AppName,
		Version:   Version,
		StartedAt: h.Started,
	})
}

// ServeRoutes handles GET /routes: every mounted route in registration order.
func (h *Handler) ServeRoutes(w http.ResponseWriter, r *http.Request) {
	routes := []Route{}
	if h.Routes != nil {
		routes = append(routes, h.Routes()...)
	}
	h.writeJSON(w, struct {
		Routes []Route `json:"routes"`
	}{Routes: routes})
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Warn("meta: encode failed", zap.Error(err))
	}
}
