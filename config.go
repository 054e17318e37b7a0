//go:build linux

package main

import (
	"strconv"
	"time"

	"github.com/freekieb7/sockhttp/http"
	"github.com/pkg/errors"
)

const (
	envPort           = "SOCKHTTP_PORT"
	envReadInterval   = "SOCKHTTP_READ_INTERVAL"
	envMaxRequestSize = "SOCKHTTP_MAX_REQUEST_SIZE"
	envWorkers        = "SOCKHTTP_WORKERS"
)

// loadConfig overlays the SOCKHTTP_* variables on the defaults.
func loadConfig(lookup func(string) (string, bool)) (http.Config, error) {
	cfg := http.DefaultConfig()

	if v, ok := lookup(envPort); ok {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid %s", envPort)
		}
		cfg.Socket.Port = uint16(port)
	}

	if v, ok := lookup(envReadInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, errors.Wrapf(err, "invalid %s", envReadInterval)
		}
		cfg.ReadInterval = d
	}

	if v, ok := lookup(envMaxRequestSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, errors.Errorf("invalid %s: %q", envMaxRequestSize, v)
		}
		cfg.MaxRequestSize = n
	}

	if v, ok := lookup(envWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, errors.Errorf("invalid %s: %q", envWorkers, v)
		}
		cfg.Socket.Workers = n
	}

	return cfg, nil
}
