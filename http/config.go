//go:build linux

package http

import (
	"time"

	"github.com/freekieb7/sockhttp/socket"
)

const (
	MaxRequestSize      = 2 * 1024 * 1024 // 2MB
	DefaultReadInterval = 10 * time.Millisecond
)

type Config struct {
	Socket socket.Config

	// ReadInterval is the minimum time between two read deliveries on a
	// connection. Zero delivers every read immediately.
	ReadInterval time.Duration

	// MaxRequestSize bounds the bytes accepted for one request, header and
	// body together.
	MaxRequestSize int
}

func DefaultConfig() Config {
	return Config{
		Socket:         socket.DefaultConfig(),
		ReadInterval:   DefaultReadInterval,
		MaxRequestSize: MaxRequestSize,
	}
}

// withDefaults fills in the request limit a zero Config leaves unset.
func (cfg Config) withDefaults() Config {
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = MaxRequestSize
	}
	return cfg
}
