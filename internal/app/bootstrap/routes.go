// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	greetfeature "github.com/dalemusser/portico/internal/app/features/greet"
	healthfeature "github.com/dalemusser/portico/internal/app/features/health"
	homefeature "github.com/dalemusser/portico/internal/app/features/home"
	metafeature "github.com/dalemusser/portico/internal/app/features/meta"
	sessionfeature "github.com/dalemusser/portico/internal/app/features/session"
	"github.com/dalemusser/portico/internal/app/system/ratelimit"
	"github.com/dalemusser/portico/internal/app/system/routegroup"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
)

// WebGroups returns the web-facing route groups, mounted at the root in this
// order.
func WebGroups(deps Deps) ([]*routegroup.Group, error) {
	logs := deps.Logs
	name := deps.App.Name()

	// Loggers are resolved by full dotted name so per-feature levels in the
	// logging document apply.
	homeHandler := homefeature.NewHandler(name, logs.Named("web.home"))
	greetHandler := greetfeature.NewHandler(logs.Named("web.greet"))
	healthHandler := healthfeature.NewHandler(name, logs.Named("web.health"))

	// Static assets with pre-compressed file support (gzip/brotli)
	static := chi.NewRouter()
	static.Method(http.MethodGet, "/static/*", fileserver.Handler("/static", deps.Config.PublicDir()))

	metrics := chi.NewRouter()
	metrics.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return []*routegroup.Group{
		routegroup.New("home", homefeature.Routes(homeHandler)),
		routegroup.New("greet", greetfeature.Routes(greetHandler)),
		routegroup.New("static", static),
		routegroup.New("health", healthfeature.Routes(healthHandler)),
		routegroup.New("metrics", metrics),
	}, nil
}

// APIGroups returns the API route groups, mounted under APIPrefix in this
// order.
func APIGroups(deps Deps) ([]*routegroup.Group, error) {
	logs := deps.Logs

	// One limiter shared by every API group, so a client's budget covers
	// the whole API surface.
	var limit []func(http.Handler) http.Handler
	if deps.Config.APIRateLimit > 0 {
		trusted, err := ratelimit.ParseTrustedProxies(deps.Config.TrustedProxies)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		limiter := ratelimit.New(deps.Config.APIRateLimit, deps.Config.APIRateBurst)
		limit = append(limit, limiter.Middleware(logs.Named("api.ratelimit"), ratelimit.ProxyAwareIP(trusted)))
	}

	metaHandler := metafeature.NewHandler(deps.App.Name(), routeLister(deps.App), logs.Named("api.meta"))
	sessionHandler := sessionfeature.NewHandler(deps.Sessions, logs.Named("api.session"))

	return []*routegroup.Group{
		routegroup.New("meta", metafeature.Routes(metaHandler, limit...)),
		routegroup.New("session", sessionfeature.Routes(sessionHandler, limit...)),
	}, nil
}

func routeLister(app *Application) func() []metafeature.Route {
	return func() []metafeature.Route {
		infos := app.Routes()
		out := make([]metafeature.Route, len(infos))
		for i, ri := range infos {
			out[i] = metafeature.Route{Group: ri.Group, Method: ri.Method, Path: ri.Path, Shadowed: ri.Shadowed}
		}
		return out
	}
}
