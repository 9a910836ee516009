// internal/app/features/health/routes.go
package health

import "github.com/go-chi/chi/v5"

// Routes returns a router that serves the health endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Serve)
	return r
}
