// internal/app/bootstrap/application.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/dalemusser/portico/internal/app/system/routegroup"
	"github.com/dalemusser/portico/internal/app/system/secretkey"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// State is the lifecycle state of an Application.
type State int32

const (
	// Unconfigured: being assembled; every request gets 503.
	Unconfigured State = iota
	// Ready: configured and serving. Terminal.
	Ready
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

var (
	// ErrSealed is returned when configuration or routes change after Ready.
	ErrSealed = errors.New("application is ready; configuration is sealed")
	// ErrDuplicateGroup is returned when a group name is mounted twice.
	ErrDuplicateGroup = errors.New("route group already mounted")
)

// MountedRoute is one registered (method, path). Shadowed routes lost to an
// identical route mounted earlier and never receive requests.
type MountedRoute struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Shadowed bool   `json:"shadowed,omitempty"`
}

// Mount records one group mounted under one prefix.
type Mount struct {
	Group  string         `json:"group"`
	Prefix string         `json:"prefix"`
	Routes []MountedRoute `json:"routes"`
}

// Application is the process-wide HTTP application: configuration values, a
// router and the ordered registry of mounted groups.
type Application struct {
	name   string
	router *chi.Mux
	state  atomic.Int32

	mu     sync.RWMutex
	config map[string]any
	mounts []Mount
	groups map[string]struct{}
	owners map[string]string // "METHOD path" -> group that owns it
	log    *zap.Logger

	// registered is every route on router, in insertion order.
	registered []pendingRoute
}

// NewApplication returns an empty, unconfigured application.
func NewApplication(name string) *Application {
	return &Application{
		name:   name,
		router: chi.NewRouter(),
		config: make(map[string]any),
		groups: make(map[string]struct{}),
		owners: make(map[string]string),
		log:    zap.NewNop(),
	}
}

// Name returns the identifying name given at construction.
func (a *Application) Name() string { return a.name }

// State reports the lifecycle state.
func (a *Application) State() State { return State(a.state.Load()) }

func (a *Application) sealed() bool { return a.State() == Ready }

// Set stores a configuration value.
func (a *Application) Set(key string, value any) error {
	if a.sealed() {
		return ErrSealed
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config[key] = value
	return nil
}

// Get returns a configuration value.
func (a *Application) Get(key string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.config[key]
	return v, ok
}

// SecretKey returns a copy of the installed secret key, or nil.
func (a *Application) SecretKey() []byte {
	v, _ := a.Get(secretkey.ConfigKey)
	key, _ := v.([]byte)
	if key == nil {
		return nil
	}
	return append([]byte(nil), key...)
}

func (a *Application) setLogger(l *zap.Logger) {
	a.mu.Lock()
	a.log = l
	a.mu.Unlock()
}

// Use installs router-wide middleware. It must be called before any route is
// mounted.
func (a *Application) Use(mw ...func(http.Handler) http.Handler) error {
	if a.sealed() {
		return ErrSealed
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.mounts) > 0 {
		return errors.New("middleware must be installed before routes are mounted")
	}
	a.router.Use(mw...)
	return nil
}

// Mount registers groups, in order, under prefix. Each group's routes are
// enumerated from its router and every path is joined to prefix with
// routegroup.JoinPath. When two routes resolve to the same method and path,
// the one mounted first keeps it.
//
// A batch is all or nothing: groups are validated and the resulting patterns
// are replayed on a scratch router before the live router is touched.
func (a *Application) Mount(groups []*routegroup.Group, prefix string) error {
	if a.sealed() {
		return ErrSealed
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	batch := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return err
		}
		if _, dup := a.groups[g.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateGroup, g.Name)
		}
		if _, dup := batch[g.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateGroup, g.Name)
		}
		batch[g.Name] = struct{}{}
	}

	var (
		mounts  = make([]Mount, 0, len(groups))
		pending []pendingRoute
		claimed = make(map[string]string)
		shadows []zap.Field
	)
	for _, g := range groups {
		routes, err := g.Routes()
		if err != nil {
			return err
		}
		m := Mount{Group: g.Name, Prefix: prefix, Routes: make([]MountedRoute, 0, len(routes))}
		for _, rt := range routes {
			full := routegroup.JoinPath(prefix, rt.Path)
			mr := MountedRoute{Method: rt.Method, Path: full}

			key := rt.Method + " " + full
			owner, taken := a.owners[key]
			if !taken {
				owner, taken = claimed[key]
			}
			if taken {
				mr.Shadowed = true
				shadows = append(shadows, zap.Dict("route",
					zap.String("group", g.Name),
					zap.String("method", rt.Method),
					zap.String("path", full),
					zap.String("owner", owner)))
			} else {
				claimed[key] = g.Name
				pending = append(pending, pendingRoute{group: g.Name, method: rt.Method, path: full, handler: rt.Handler})
			}
			m.Routes = append(m.Routes, mr)
		}
		mounts = append(mounts, m)
	}

	if err := a.checkPatterns(pending); err != nil {
		return err
	}

	for _, p := range pending {
		a.router.Method(p.method, p.path, p.handler)
		a.registered = append(a.registered, p)
	}
	for key, owner := range claimed {
		a.owners[key] = owner
	}
	for _, g := range groups {
		a.groups[g.Name] = struct{}{}
	}
	a.mounts = append(a.mounts, mounts...)

	for _, f := range shadows {
		a.log.Warn("route shadowed by earlier mount", f)
	}
	return nil
}

type pendingRoute struct {
	group   string
	method  string
	path    string
	handler http.Handler
}

// checkPatterns inserts every registered route and then pending into a
// scratch router. chi panics on patterns it cannot combine; that panic comes
// back as an error naming the offending group.
func (a *Application) checkPatterns(pending []pendingRoute) (err error) {
	scratch := chi.NewRouter()
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	current := ""
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("group %q: %v", current, r)
		}
	}()

	for _, p := range a.registered {
		scratch.Method(p.method, p.path, noop)
	}
	for _, p := range pending {
		current = p.group
		scratch.Method(p.method, p.path, noop)
	}
	return nil
}

// markReady seals the application. It only ever moves forward.
func (a *Application) markReady() {
	a.state.Store(int32(Ready))
}

// Mounts returns a copy of the mount registry in registration order.
func (a *Application) Mounts() []Mount {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Mount, len(a.mounts))
	for i, m := range a.mounts {
		m.Routes = append([]MountedRoute(nil), m.Routes...)
		out[i] = m
	}
	return out
}

// RouteInfo is a flattened registry row.
type RouteInfo struct {
	Group    string `json:"group"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Shadowed bool   `json:"shadowed,omitempty"`
}

// Routes flattens Mounts in registration order.
func (a *Application) Routes() []RouteInfo {
	var out []RouteInfo
	for _, m := range a.Mounts() {
		for _, r := range m.Routes {
			out = append(out, RouteInfo{Group: m.Group, Method: r.Method, Path: r.Path, Shadowed: r.Shadowed})
		}
	}
	return out
}

// ServeHTTP answers 503 until the application is Ready.
func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !a.sealed() {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "service starting", http.StatusServiceUnavailable)
		return
	}
	a.router.ServeHTTP(w, r)
}
