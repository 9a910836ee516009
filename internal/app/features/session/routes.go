package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a router for the visit counter. mw wraps it.
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/session", h.ServeVisits)
	return r
}
