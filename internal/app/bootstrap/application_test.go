package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/portico/internal/app/system/routegroup"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

// gets builds a group answering GET on each path with the paired body.
func gets(name string, pathBody ...string) *routegroup.Group {
	r := chi.NewRouter()
	for i := 0; i+1 < len(pathBody); i += 2 {
		r.Get(pathBody[i], reply(pathBody[i+1]))
	}
	return routegroup.New(name, r)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestApplication_UnconfiguredReturns503(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{gets("home", "/", "home")}, ""))

	assert.Equal(t, Unconfigured, app.State())
	rec := get(t, app, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	app.markReady()
	assert.Equal(t, Ready, app.State())
	rec = get(t, app, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home", rec.Body.String())
}

func TestApplication_PrefixJoining(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{
		gets("pages", "/", "root", "/about", "about"),
	}, ""))
	require.NoError(t, app.Mount([]*routegroup.Group{
		gets("users", "/users", "users", "/users/{id}", "user"),
		gets("index", "/", "index"),
	}, APIPrefix))
	app.markReady()

	var paths []string
	for _, r := range app.Routes() {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"/", "/about", "/api/v1/users", "/api/v1/users/{id}", "/api/v1/"}, paths)

	assert.Equal(t, "user", get(t, app, "/api/v1/users/42").Body.String())
	assert.Equal(t, "index", get(t, app, "/api/v1/").Body.String())
	assert.Equal(t, http.StatusNotFound, get(t, app, "/users").Code)
	assert.Equal(t, http.StatusNotFound, get(t, app, "/api/v1//users").Code)
}

func TestApplication_FirstMountWins(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{
		gets("first", "/", "first"),
		gets("second", "/", "second", "/only-second", "second"),
	}, ""))
	app.markReady()

	assert.Equal(t, "first", get(t, app, "/").Body.String())
	assert.Equal(t, "second", get(t, app, "/only-second").Body.String())

	mounts := app.Mounts()
	require.Len(t, mounts, 2)
	assert.Equal(t, "first", mounts[0].Group)
	assert.Equal(t, "second", mounts[1].Group)
	assert.False(t, mounts[0].Routes[0].Shadowed)
	assert.True(t, mounts[1].Routes[0].Shadowed)
	assert.False(t, mounts[1].Routes[1].Shadowed)
}

func TestApplication_ShadowLoggedOnce(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	app := NewApplication("test")
	app.setLogger(zap.New(core))

	require.NoError(t, app.Mount([]*routegroup.Group{gets("first", "/", "first")}, ""))
	require.NoError(t, app.Mount([]*routegroup.Group{gets("second", "/", "second")}, ""))

	entries := logs.FilterMessage("route shadowed by earlier mount").All()
	require.Len(t, entries, 1)
	route, ok := entries[0].ContextMap()["route"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "first", route["owner"])
	assert.Equal(t, "second", route["group"])
}

func TestApplication_OrderAcrossManyGroups(t *testing.T) {
	app := NewApplication("test")
	names := []string{"g0", "g1", "g2", "g3", "g4", "g5", "g6", "g7"}
	var groups []*routegroup.Group
	for _, n := range names {
		groups = append(groups, gets(n, "/shared", n, "/"+n, n))
	}
	require.NoError(t, app.Mount(groups, ""))
	app.markReady()

	var got []string
	for _, m := range app.Mounts() {
		got = append(got, m.Group)
	}
	assert.Equal(t, names, got)
	assert.Equal(t, "g0", get(t, app, "/shared").Body.String())
	assert.Equal(t, "g5", get(t, app, "/g5").Body.String())
}

func TestApplication_MountErrors(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{gets("home", "/", "x")}, ""))

	err := app.Mount([]*routegroup.Group{gets("home", "/again", "x")}, APIPrefix)
	assert.ErrorIs(t, err, ErrDuplicateGroup)

	err = app.Mount([]*routegroup.Group{
		gets("twin", "/a", "x"),
		gets("twin", "/b", "x"),
	}, "")
	assert.ErrorIs(t, err, ErrDuplicateGroup)

	assert.Error(t, app.Mount([]*routegroup.Group{routegroup.New("bare", nil)}, ""))
	assert.Error(t, app.Mount([]*routegroup.Group{routegroup.New("", chi.NewRouter())}, ""))
	assert.Error(t, app.Mount([]*routegroup.Group{nil}, ""))

	// Failed batches register nothing.
	assert.Len(t, app.Mounts(), 1)
}

func TestApplication_FailedBatchLeavesNothingBehind(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{gets("home", "/", "home")}, ""))

	// "/p/{id}/b/{id}" repeats a param key; chi rejects it only once joined.
	err := app.Mount([]*routegroup.Group{
		gets("fine", "/a", "a"),
		gets("clash", "/b/{id}", "b"),
	}, "/p/{id}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"clash"`)
	assert.Len(t, app.Mounts(), 1)
	assert.Len(t, app.Routes(), 1)

	// Names from the failed batch are still free.
	require.NoError(t, app.Mount([]*routegroup.Group{gets("fine", "/a", "a")}, APIPrefix))
	app.markReady()

	assert.Equal(t, http.StatusNotFound, get(t, app, "/p/1/a").Code)
	assert.Equal(t, "a", get(t, app, "/api/v1/a").Body.String())
}

func TestApplication_MiddlewareOnGroupRouter(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Group", "tagged")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/tagged", reply("t"))

	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{
		routegroup.New("tagged", r),
		gets("plain", "/plain", "p"),
	}, APIPrefix))
	app.markReady()

	assert.Equal(t, "tagged", get(t, app, "/api/v1/tagged").Header().Get("X-Group"))
	assert.Empty(t, get(t, app, "/api/v1/plain").Header().Get("X-Group"))
}

func TestApplication_SealedAfterReady(t *testing.T) {
	app := NewApplication("test")
	app.markReady()

	assert.ErrorIs(t, app.Mount([]*routegroup.Group{gets("late", "/", "x")}, ""), ErrSealed)
	assert.ErrorIs(t, app.Set("k", 1), ErrSealed)
	assert.ErrorIs(t, app.Use(func(h http.Handler) http.Handler { return h }), ErrSealed)
}

func TestApplication_UseAfterMountRejected(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{gets("home", "/", "x")}, ""))
	assert.Error(t, app.Use(func(h http.Handler) http.Handler { return h }))
}

func TestApplication_MethodNotAllowed(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Mount([]*routegroup.Group{gets("home", "/", "x")}, ""))
	app.markReady()

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestApplication_SecretKeyIsCopied(t *testing.T) {
	app := NewApplication("test")
	require.NoError(t, app.Set("SECRET_KEY", []byte{1, 2, 3}))

	k := app.SecretKey()
	k[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, app.SecretKey())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unconfigured", Unconfigured.String())
	assert.Equal(t, "ready", Ready.String())
}
