package greet

import "github.com/go-chi/chi/v5"

// Routes returns a router serving the greeting.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/hello", h.ServeHello)
	return r
}
