//go:build linux

package socket

import (
	"context"
	"sync"
)

// Conn is an accepted client connection. It owns the descriptor, which is
// closed exactly once whichever path ends the exchange.
type Conn struct {
	fd      int
	addr    Address
	loop    *Loop
	sockets Sockets

	once     sync.Once
	closeErr error
}

func newConn(fd int, addr Address, loop *Loop, sockets Sockets) *Conn {
	openConnsGauge.Add(context.Background(), 1)
	return &Conn{
		fd:      fd,
		addr:    addr,
		loop:    loop,
		sockets: sockets,
	}
}

func (c *Conn) Fd() int {
	return c.fd
}

func (c *Conn) Addr() Address {
	return c.addr
}

// OpenStream registers the connection with its event loop and returns the
// asynchronous byte stream over it.
func (c *Conn) OpenStream() (*Stream, error) {
	s := &Stream{
		conn:    c,
		scratch: make([]byte, DefaultReadSize),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := c.loop.Add(c.fd, 0, s.onReady, func() { s.Close() })
	if err != nil {
		return nil, err
	}
	s.reg = reg

	return s, nil
}

func (c *Conn) Close() error {
	c.once.Do(func() {
		openConnsGauge.Add(context.Background(), -1)
		c.closeErr = c.sockets.Close(c.fd)
	})
	return c.closeErr
}
