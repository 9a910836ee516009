// Package timeouts holds the HTTP server and shutdown timeouts.
//
// Values start at the defaults below and may be overridden once at startup
// with Configure. Zero values passed to Configure keep the current value.
package timeouts

import (
	"sync"
	"time"
)

// Defaults.
const (
	DefaultReadHeader = 5 * time.Second
	DefaultRead       = 15 * time.Second
	DefaultWrite      = 30 * time.Second
	DefaultIdle       = 60 * time.Second
	DefaultShutdown   = 15 * time.Second
)

var mu sync.RWMutex

var current = Config{
	ReadHeader: DefaultReadHeader,
	Read:       DefaultRead,
	Write:      DefaultWrite,
	Idle:       DefaultIdle,
	Shutdown:   DefaultShutdown,
}

// Config holds timeout values.
type Config struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
	Shutdown   time.Duration
}

// Configure overrides the non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.ReadHeader > 0 {
		current.ReadHeader = cfg.ReadHeader
	}
	if cfg.Read > 0 {
		current.Read = cfg.Read
	}
	if cfg.Write > 0 {
		current.Write = cfg.Write
	}
	if cfg.Idle > 0 {
		current.Idle = cfg.Idle
	}
	if cfg.Shutdown > 0 {
		current.Shutdown = cfg.Shutdown
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = Config{
		ReadHeader: DefaultReadHeader,
		Read:       DefaultRead,
		Write:      DefaultWrite,
		Idle:       DefaultIdle,
		Shutdown:   DefaultShutdown,
	}
}

// Current returns a snapshot of the configured values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func ReadHeader() time.Duration { return Current().ReadHeader }
func Read() time.Duration       { return Current().Read }
func Write() time.Duration      { return Current().Write }
func Idle() time.Duration       { return Current().Idle }
func Shutdown() time.Duration   { return Current().Shutdown }
