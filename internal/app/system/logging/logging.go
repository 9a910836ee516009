// Package logging configures process-wide zap loggers from a JSON document.
//
// The document has three top-level keys:
//
//	{
//	  "version": 1,
//	  "root":    { ...zap.Config... },
//	  "loggers": { "api": { "level": "debug" }, "api.users": { "level": "warn" } }
//	}
//
// "root" is decoded directly into a zap.Config, so every field zap understands
// (level, encoding, outputPaths, errorOutputPaths, encoderConfig, sampling,
// initialFields, ...) is accepted and nothing else is. Named loggers inherit
// the level of their nearest configured dotted ancestor, then the root level.
package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is the only document version understood.
const Version = 1

type document struct {
	Version int                  `json:"version"`
	Root    json.RawMessage      `json:"root"`
	Loggers map[string]loggerDoc `json:"loggers"`
}

type loggerDoc struct {
	Level *zapcore.Level `json:"level"`
}

// rootProbe checks for required root keys before the strict decode.
type rootProbe struct {
	Level    *string `json:"level"`
	Encoding *string `json:"encoding"`
}

// Loggers is the configured logging state.
type Loggers struct {
	base   *zap.Logger
	floor  zapcore.Level
	root   zapcore.Level
	levels map[string]zapcore.Level
}

// Load reads and applies the document at path.
func Load(path string) (*Loggers, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logging config: %w", err)
	}
	l, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("logging config %s: %w", path, err)
	}
	return l, nil
}

// Parse builds Loggers from a raw JSON document.
func Parse(raw []byte) (*Loggers, error) {
	var doc document
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported version %d (want %d)", doc.Version, Version)
	}
	if len(doc.Root) == 0 {
		return nil, errors.New(`missing "root" section`)
	}

	var probe rootProbe
	if err := json.Unmarshal(doc.Root, &probe); err != nil {
		return nil, fmt.Errorf("decode root: %w", err)
	}
	if probe.Level == nil {
		return nil, errors.New(`root: "level" is required`)
	}
	if probe.Encoding == nil {
		return nil, errors.New(`root: "encoding" is required`)
	}

	var cfg zap.Config
	if err := decodeStrict(doc.Root, &cfg); err != nil {
		return nil, fmt.Errorf("decode root: %w", err)
	}

	l := &Loggers{
		root:   cfg.Level.Level(),
		levels: make(map[string]zapcore.Level, len(doc.Loggers)),
	}
	l.floor = l.root
	for name, ld := range doc.Loggers {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("loggers: empty logger name")
		}
		if ld.Level == nil {
			return nil, fmt.Errorf("loggers.%s: \"level\" is required", name)
		}
		l.levels[name] = *ld.Level
		if *ld.Level < l.floor {
			l.floor = *ld.Level
		}
	}

	// The shared core runs at the lowest configured level; each logger
	// raises its own threshold from there.
	cfg.Level = zap.NewAtomicLevelAt(l.floor)
	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	l.base = base
	return l, nil
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after document")
	}
	return nil
}

func (l *Loggers) raise(lg *zap.Logger, lvl zapcore.Level) *zap.Logger {
	if lvl > l.floor {
		return lg.WithOptions(zap.IncreaseLevel(lvl))
	}
	return lg
}

// Root returns the root logger.
func (l *Loggers) Root() *zap.Logger {
	return l.raise(l.base, l.root)
}

// Named returns a logger called name at its configured level.
func (l *Loggers) Named(name string) *zap.Logger {
	return l.raise(l.base.Named(name), l.LevelOf(name))
}

// LevelOf resolves the effective level for a dotted logger name.
func (l *Loggers) LevelOf(name string) zapcore.Level {
	for n := name; n != ""; {
		if lvl, ok := l.levels[n]; ok {
			return lvl
		}
		i := strings.LastIndexByte(n, '.')
		if i < 0 {
			break
		}
		n = n[:i]
	}
	return l.root
}

// Sync flushes buffered output.
func (l *Loggers) Sync() error {
	return l.base.Sync()
}

// NewStderr returns the pre-configuration diagnostic logger used before the
// logging document has been applied.
func NewStderr() *zap.Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	return zap.New(core)
}
