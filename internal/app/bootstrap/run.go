// internal/app/bootstrap/run.go
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/portico/internal/app/system/logging"
	"go.uber.org/zap"
)

// Name identifies this application.
const Name = "portico"

// Run is the process lifecycle: load and validate config, bootstrap the
// application once, serve until SIGINT/SIGTERM, then shut down.
func Run(ctx context.Context) error {
	diag := logging.NewStderr()
	defer func() { _ = diag.Sync() }()

	coreCfg, appCfg, err := LoadConfig(diag)
	if err != nil {
		diag.Error("config load failed", zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}
	if err := ValidateConfig(appCfg); err != nil {
		diag.Error("invalid config", zap.Error(err))
		return err
	}
	applyTimeouts(appCfg)

	boot := New(Options{
		Name:        Name,
		Env:         coreCfg.Env,
		Config:      appCfg,
		Diagnostics: diag,
		Web:         WebGroups,
		API:         APIGroups,
	})
	app, err := boot.Run()
	if err != nil {
		if logs := boot.Loggers(); logs != nil {
			_ = logs.Sync()
		}
		return err
	}
	logs := boot.Loggers()
	defer func() { _ = logs.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvLog := logs.Named("server")
	return Serve(ctx, NewServer(appCfg.HTTPAddr, app, srvLog), srvLog)
}
