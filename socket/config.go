//go:build linux

package socket

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

const (
	DefaultFirstPort  = 8000
	DefaultPortSpread = 1000
	DefaultLastPort   = 10000
	DefaultQueueSize  = 1024
	DefaultReadSize   = 4096 // 4kB
)

// PortRange is the closed range [First, Last] scanned for a free port. The
// scan starts at a random offset in [First, First+Spread).
type PortRange struct {
	First  uint16
	Spread uint16
	Last   uint16
}

type Config struct {
	Domain  Domain
	Ports   PortRange
	Port    uint16 // start of the scan; 0 picks a random start
	Seed    int64  // 0 seeds from the clock
	Backlog int
	Workers int

	QueueSize int
}

func DefaultConfig() Config {
	return Config{
		Domain: Inet,
		Ports: PortRange{
			First:  DefaultFirstPort,
			Spread: DefaultPortSpread,
			Last:   DefaultLastPort,
		},
		Backlog:   unix.SOMAXCONN,
		Workers:   runtime.GOMAXPROCS(0),
		QueueSize: DefaultQueueSize,
	}
}

func (cfg Config) seed() int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

// portRange is cfg.Ports, or the default range when none is configured.
func (cfg Config) portRange() PortRange {
	if cfg.Ports == (PortRange{}) {
		return DefaultConfig().Ports
	}
	return cfg.Ports
}
