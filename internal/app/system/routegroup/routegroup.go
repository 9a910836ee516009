// Package routegroup names the chi routers that feature packages hand to the
// bootstrapper.
//
// A group's router declares its own route paths and does not know where it
// will be mounted; the application decides the prefix and joins it with each
// path using JoinPath.
package routegroup

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Group is a named, mountable chi router.
type Group struct {
	Name   string
	Router chi.Router
}

// New names r.
func New(name string, r chi.Router) *Group {
	return &Group{Name: name, Router: r}
}

// Route is one endpoint of a group. Handler already carries the middleware
// the group's router applies to it.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Validate reports the first structural problem with the group.
func (g *Group) Validate() error {
	if g == nil {
		return fmt.Errorf("route group is nil")
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("route group has no name")
	}
	if g.Router == nil {
		return fmt.Errorf("group %q has no router", g.Name)
	}
	return nil
}

// Routes enumerates the group's endpoints with chi.Walk. Paths come in the
// router's tree order and the methods of one path are sorted.
func (g *Group) Routes() ([]Route, error) {
	var out []Route
	first := make(map[string]int)

	err := chi.Walk(g.Router, func(method, route string, h http.Handler, mws ...func(http.Handler) http.Handler) error {
		if len(mws) > 0 {
			h = chi.Chain(mws...).Handler(h)
		}
		if _, seen := first[route]; !seen {
			first[route] = len(first)
		}
		out = append(out, Route{Method: method, Path: route, Handler: h})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", g.Name, err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := first[out[i].Path], first[out[j].Path]
		if pi != pj {
			return pi < pj
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}

// JoinPath joins a mount prefix and a route path with exactly one slash
// between them. An empty prefix leaves an absolute path unchanged.
//
//	JoinPath("", "/about")         == "/about"
//	JoinPath("/api/v1/", "/users") == "/api/v1/users"
//	JoinPath("/api/v1/", "/")      == "/api/v1/"
func JoinPath(prefix, path string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")
}
