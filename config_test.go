//go:build linux

package main

import (
	"testing"
	"time"

	"github.com/freekieb7/sockhttp/http"
	"github.com/freekieb7/sockhttp/test"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(lookupFrom(nil))
	test.NoError(t, err)

	test.Equal(t, http.MaxRequestSize, cfg.MaxRequestSize)
	test.Equal(t, http.DefaultReadInterval, cfg.ReadInterval)
	test.Equal(t, uint16(0), cfg.Socket.Port)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(lookupFrom(map[string]string{
		envPort:           "9123",
		envReadInterval:   "0s",
		envMaxRequestSize: "1024",
		envWorkers:        "3",
	}))
	test.NoError(t, err)

	test.Equal(t, uint16(9123), cfg.Socket.Port)
	test.Equal(t, time.Duration(0), cfg.ReadInterval)
	test.Equal(t, 1024, cfg.MaxRequestSize)
	test.Equal(t, 3, cfg.Socket.Workers)
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	for _, key := range []string{envPort, envReadInterval, envMaxRequestSize, envWorkers} {
		t.Run(key, func(t *testing.T) {
			_, err := loadConfig(lookupFrom(map[string]string{key: "nope"}))
			if err == nil {
				t.Fatalf("expected an error for %s", key)
			}
		})
	}
}
