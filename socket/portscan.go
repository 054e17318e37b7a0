//go:build linux

package socket

import (
	"math/rand"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ScanStart picks the first candidate port of r from seed. The same seed
// always yields the same port.
func ScanStart(r PortRange, seed int64) uint16 {
	if r.Spread == 0 {
		return r.First
	}
	rng := rand.New(rand.NewSource(seed))
	return r.First + uint16(rng.Intn(int(r.Spread)))
}

// BindAnyPort binds fd to the first free port in [start, last]. A port in use
// moves the scan on; any other failure ends it.
func BindAnyPort(sockets Sockets, fd int, domain Domain, start, last uint16) (uint16, error) {
	for port := int(start); port <= int(last); port++ {
		err := sockets.Bind(fd, domain, uint16(port))
		if err == nil {
			return uint16(port), nil
		}
		if errors.Is(err, unix.EADDRINUSE) {
			continue
		}
		return 0, err
	}
	return 0, ErrNoPortAvailable
}
