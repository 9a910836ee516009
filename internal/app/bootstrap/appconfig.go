// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"path/filepath"
	"time"
)

// AppConfig holds portico's app-level configuration.
//
// Values come from config files, PORTICO_* environment variables or
// command-line flags (see LoadConfig). The secret key is deliberately not
// configurable: it is generated fresh on every start.
type AppConfig struct {
	HTTPAddr string // listen address, e.g. ":8080"

	// ResourceDir holds logging_config/ and public/. Defaults to the
	// directory of the running executable, not the working directory.
	ResourceDir string
	// LoggingConfig overrides <ResourceDir>/logging_config/config.json.
	LoggingConfig string

	SessionName   string // session cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Per-client token bucket applied to every API group. A rate of
	// zero disables limiting.
	APIRateLimit float64 // requests per second
	APIRateBurst int
	// TrustedProxies lists CIDRs or IPs (comma-separated) whose
	// X-Forwarded-For / X-Real-IP headers identify the client. Blank means
	// clients are keyed by the connection address only.
	TrustedProxies string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfigPath is the logging document applied at startup.
func (c AppConfig) LoggingConfigPath() string {
	if c.LoggingConfig != "" {
		return c.LoggingConfig
	}
	return filepath.Join(c.ResourceDir, "logging_config", "config.json")
}

// PublicDir holds static assets served under /static.
func (c AppConfig) PublicDir() string {
	return filepath.Join(c.ResourceDir, "public")
}
