// internal/app/bootstrap/bootstrap.go
package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dalemusser/portico/internal/app/system/accesslog"
	"github.com/dalemusser/portico/internal/app/system/logging"
	"github.com/dalemusser/portico/internal/app/system/metrics"
	"github.com/dalemusser/portico/internal/app/system/requestid"
	"github.com/dalemusser/portico/internal/app/system/routegroup"
	"github.com/dalemusser/portico/internal/app/system/secretkey"
	"github.com/dalemusser/portico/internal/app/system/sessions"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// APIPrefix is the mount prefix for API route groups.
const APIPrefix = "/api/v1/"

// ErrAlreadyBootstrapped is returned by a second Run on the same Bootstrapper.
var ErrAlreadyBootstrapped = errors.New("bootstrap already ran")

// Deps is what route group factories receive. Everything in it is fully
// configured by the time a factory is called.
type Deps struct {
	App      *Application
	Config   AppConfig
	Env      string
	Logs     *logging.Loggers
	Sessions *sessions.Store
	Metrics  *metrics.Recorder
}

// GroupSource supplies an ordered collection of route groups. An error is
// fatal to startup.
type GroupSource func(Deps) ([]*routegroup.Group, error)

// Options configures a Bootstrapper.
type Options struct {
	Name   string
	Env    string // "dev" or "prod"; prod marks session cookies Secure
	Config AppConfig

	// Entropy is the secret key source. Nil means crypto/rand.
	Entropy io.Reader
	// Diagnostics receives failures that happen before logging is
	// configured. Nil means a stderr logger.
	Diagnostics *zap.Logger

	Web GroupSource // mounted at the root
	API GroupSource // mounted under APIPrefix

	// OnSecretKey, if set, receives a copy of the generated key.
	OnSecretKey func([]byte)
}

// Bootstrapper assembles one Application exactly once.
type Bootstrapper struct {
	opts Options
	ran  atomic.Bool
	logs *logging.Loggers
}

// New returns a Bootstrapper for opts.
func New(opts Options) *Bootstrapper {
	if opts.Diagnostics == nil {
		opts.Diagnostics = logging.NewStderr()
	}
	return &Bootstrapper{opts: opts}
}

// Loggers returns the configured loggers once Run has passed the logging step.
func (b *Bootstrapper) Loggers() *logging.Loggers { return b.logs }

// Run builds the application:
//
//  1. construct the application instance
//  2. generate and install the secret key
//  3. load the logging configuration
//  4. mount the web groups at the root, in order
//  5. mount the API groups under APIPrefix, in order
//
// and then marks it Ready. Any failure aborts; nothing is retried and no
// partially built application is returned.
func (b *Bootstrapper) Run() (*Application, error) {
	if !b.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyBootstrapped
	}
	diag := b.opts.Diagnostics

	app := NewApplication(b.opts.Name)

	key, err := secretkey.Generate(b.opts.Entropy)
	if err != nil {
		diag.Error("secret key generation failed", zap.Error(err))
		return nil, fmt.Errorf("secret key: %w", err)
	}
	if err := app.Set(secretkey.ConfigKey, key); err != nil {
		return nil, err
	}
	if b.opts.OnSecretKey != nil {
		b.opts.OnSecretKey(append([]byte(nil), key...))
	}

	path := b.opts.Config.LoggingConfigPath()
	logs, err := logging.Load(path)
	if err != nil {
		diag.Error("logging configuration failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("logging: %w", err)
	}
	b.logs = logs
	log := logs.Named("bootstrap")
	app.setLogger(logs.Named("app"))
	log.Info("logging configured", zap.String("path", path))

	store, err := sessions.New(key, b.opts.Config.SessionName, b.opts.Config.SessionDomain, b.opts.Env == "prod", logs.Named("sessions"))
	if err != nil {
		log.Error("session store init failed", zap.Error(err))
		return nil, fmt.Errorf("sessions: %w", err)
	}
	rec := metrics.NewRecorder(metricsNamespace(b.opts.Name))

	if err := app.Use(
		requestid.Middleware,
		accesslog.Middleware(logs.Named("http")),
		rec.Middleware,
		middleware.Recoverer,
	); err != nil {
		return nil, err
	}

	deps := Deps{
		App:      app,
		Config:   b.opts.Config,
		Env:      b.opts.Env,
		Logs:     logs,
		Sessions: store,
		Metrics:  rec,
	}

	if err := b.mount(app, deps, "web", b.opts.Web, ""); err != nil {
		log.Error("web route registration failed", zap.Error(err))
		return nil, err
	}
	if err := b.mount(app, deps, "api", b.opts.API, APIPrefix); err != nil {
		log.Error("api route registration failed", zap.Error(err))
		return nil, err
	}

	app.markReady()
	log.Info("application ready",
		zap.String("app", app.Name()),
		zap.Int("groups", len(app.Mounts())),
		zap.Int("routes", len(app.Routes())))
	return app, nil
}

func (b *Bootstrapper) mount(app *Application, deps Deps, kind string, src GroupSource, prefix string) error {
	if src == nil {
		return nil
	}
	groups, err := loadGroups(src, deps)
	if err != nil {
		return fmt.Errorf("load %s groups: %w", kind, err)
	}
	if err := app.Mount(groups, prefix); err != nil {
		return fmt.Errorf("mount %s groups: %w", kind, err)
	}
	return nil
}

// loadGroups calls src. chi panics on a malformed pattern while a factory
// builds its router; that is reported as an error.
func loadGroups(src GroupSource, deps Deps) (groups []*routegroup.Group, err error) {
	defer func() {
		if r := recover(); r != nil {
			groups, err = nil, fmt.Errorf("%v", r)
		}
	}()
	return src(deps)
}

func metricsNamespace(name string) string {
	if name == "" {
		return "app"
	}
	out := make([]byte, 0, len(name)+1)
	if name[0] >= '0' && name[0] <= '9' {
		out = append(out, '_')
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
