package meta

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router for the version and route listing endpoints.
// mw wraps both.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/version", h.ServeVersion)
	r.Get("/routes", h.ServeRoutes)
	return r
}
