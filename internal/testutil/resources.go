package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// LoggingConfig is a logging document that writes JSON lines to logFile at
// debug level.
func LoggingConfig(logFile string) string {
	return `{
  "version": 1,
  "root": {
    "level": "debug",
    "encoding": "json",
    "outputPaths": [` + strconv.Quote(logFile) + `],
    "errorOutputPaths": ["stderr"],
    "encoderConfig": {"messageKey": "msg", "levelKey": "level", "nameKey": "logger", "levelEncoder": "lowercase"}
  }
}`
}

// ResourceDir creates a temporary resource directory laid out like a
// deployment: logging_config/config.json and an empty public/. The log
// output goes to <dir>/app.log.
func ResourceDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{"logging_config", "public"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", sub, err)
		}
	}
	cfg := LoggingConfig(filepath.Join(dir, "app.log"))
	if err := os.WriteFile(filepath.Join(dir, "logging_config", "config.json"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write logging config: %v", err)
	}
	return dir
}
