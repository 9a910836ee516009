// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dalemusser/portico/internal/app/system/ratelimit"
	"github.com/dalemusser/portico/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for portico.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: http_addr, resource_dir, etc.
//   - Environment variables: PORTICO_HTTP_ADDR, PORTICO_RESOURCE_DIR, etc.
//   - Command-line flags: --http_addr, --resource_dir, etc.
var appConfigKeys = []config.AppKey{
	{Name: "http_addr", Default: ":8080", Desc: "HTTP listen address"},
	{Name: "resource_dir", Default: "", Desc: "Directory holding logging_config/ and public/ (blank means the executable's directory)"},
	{Name: "logging_config", Default: "", Desc: "Path to the logging configuration document (blank means <resource_dir>/logging_config/config.json)"},
	{Name: "session_name", Default: "portico-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "api_rate_limit", Default: "20", Desc: "API requests per second per client (0 disables)"},
	{Name: "api_rate_burst", Default: 40, Desc: "API burst size per client"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated CIDRs of reverse proxies whose forwarding headers are trusted"},

	{Name: "read_timeout", Default: "15s", Desc: "HTTP server read timeout"},
	{Name: "write_timeout", Default: "30s", Desc: "HTTP server write timeout"},
	{Name: "idle_timeout", Default: "60s", Desc: "HTTP server keep-alive idle timeout"},
	{Name: "shutdown_timeout", Default: "15s", Desc: "Grace period for in-flight requests on shutdown"},
}

// LoadConfig loads WAFFLE core config and portico's app config.
//
// logger is the pre-configuration diagnostic logger: the logging document
// has not been applied yet at this point.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PORTICO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		HTTPAddr:      appValues.String("http_addr"),
		ResourceDir:   appValues.String("resource_dir"),
		LoggingConfig: appValues.String("logging_config"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		APIRateBurst:   appValues.Int("api_rate_burst"),
		TrustedProxies: appValues.String("trusted_proxies"),

		ReadTimeout:     appValues.Duration("read_timeout", timeouts.DefaultRead),
		WriteTimeout:    appValues.Duration("write_timeout", timeouts.DefaultWrite),
		IdleTimeout:     appValues.Duration("idle_timeout", timeouts.DefaultIdle),
		ShutdownTimeout: appValues.Duration("shutdown_timeout", timeouts.DefaultShutdown),
	}

	rateLimit, err := strconv.ParseFloat(appValues.String("api_rate_limit"), 64)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("api_rate_limit: %w", err)
	}
	appCfg.APIRateLimit = rateLimit

	if appCfg.ResourceDir == "" {
		dir, err := executableDir()
		if err != nil {
			return nil, AppConfig{}, fmt.Errorf("resolve resource dir: %w", err)
		}
		appCfg.ResourceDir = dir
		logger.Info("resource dir defaults to executable directory", zap.String("resource_dir", dir))
	}

	return coreCfg, appCfg, nil
}

// executableDir resolves the directory of the running binary.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ValidateConfig rejects configuration that cannot produce a working server.
func ValidateConfig(appCfg AppConfig) error {
	if _, _, err := net.SplitHostPort(appCfg.HTTPAddr); err != nil {
		return fmt.Errorf("invalid http_addr %q: %w", appCfg.HTTPAddr, err)
	}
	if appCfg.APIRateLimit < 0 {
		return fmt.Errorf("api_rate_limit must not be negative")
	}
	if appCfg.APIRateLimit > 0 && appCfg.APIRateBurst < 1 {
		return fmt.Errorf("api_rate_burst must be at least 1 when rate limiting is on")
	}
	if _, err := ratelimit.ParseTrustedProxies(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted_proxies: %w", err)
	}
	if appCfg.SessionName == "" {
		return fmt.Errorf("session_name must not be empty")
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":     appCfg.ReadTimeout,
		"write_timeout":    appCfg.WriteTimeout,
		"idle_timeout":     appCfg.IdleTimeout,
		"shutdown_timeout": appCfg.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// applyTimeouts pushes the configured durations into the timeouts package.
func applyTimeouts(appCfg AppConfig) {
	timeouts.Configure(timeouts.Config{
		Read:     appCfg.ReadTimeout,
		Write:    appCfg.WriteTimeout,
		Idle:     appCfg.IdleTimeout,
		Shutdown: appCfg.ShutdownTimeout,
	})
}
