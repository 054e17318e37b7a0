//go:build linux

package socket

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sys/unix"
)

// AcceptFunc receives every accepted connection together with its peer
// address.
type AcceptFunc func(conn *Conn, addr Address)

// Listener owns a bound, listening, non-blocking socket and the event loop
// that serves it and the connections it accepts.
type Listener struct {
	sockets  Sockets
	loop     *Loop
	fd       int
	port     uint16
	onAccept AcceptFunc

	mu     sync.Mutex
	reg    *Registration
	closed bool
}

// Listen binds a socket to the first free port of the configured range,
// starts listening and begins accepting on a loop dedicated to this port.
func Listen(sockets Sockets, cfg Config, onAccept AcceptFunc) (*Listener, error) {
	fd, err := sockets.Open(cfg.Domain)
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*Listener, error) {
		ignoreAndLog("failed to close listening socket", func() error {
			return sockets.Close(fd)
		})
		return nil, err
	}

	ports := cfg.portRange()
	start := cfg.Port
	if start == 0 {
		start = ScanStart(ports, cfg.seed())
	}
	last := max(ports.Last, start)

	port, err := BindAnyPort(sockets, fd, cfg.Domain, start, last)
	if err != nil {
		return fail(err)
	}

	if err := sockets.SetNonBlocking(fd); err != nil {
		return fail(err)
	}

	backlog := cfg.Backlog
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	if err := sockets.Listen(fd, backlog); err != nil {
		return fail(err)
	}

	loop, err := NewLoop(fmt.Sprintf("server on port %d", port), cfg.Workers, cfg.QueueSize)
	if err != nil {
		return fail(err)
	}

	l := &Listener{
		sockets:  sockets,
		loop:     loop,
		fd:       fd,
		port:     port,
		onAccept: onAccept,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	reg, err := loop.Add(fd, unix.EPOLLIN, l.onReadable, nil)
	if err != nil {
		loop.Close()
		return fail(err)
	}
	l.reg = reg

	logger.Debug("listening", "port", port, "fd", fd)
	return l, nil
}

func (l *Listener) Port() uint16 {
	return l.port
}

// onReadable accepts exactly as many connections as the kernel reports
// pending. A failed accept is logged and skipped.
func (l *Listener) onReadable(events uint32) {
	ctx := context.Background()
	portAttr := metric.WithAttributes(attribute.Int("socket.port", int(l.port)))

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}

	readinessCnt.Add(ctx, 1, portAttr)

	pending, err := l.sockets.Pending(l.fd)
	if err != nil {
		logger.Error("failed to read pending connection count", "port", l.port, "err", err, "at", location(err))
	}
	// Readable means at least one.
	pending = max(pending, 1)

	type accepted struct {
		conn *Conn
		addr Address
	}
	batch := make([]accepted, 0, pending)

	for range pending {
		fd, addr, err := l.sockets.Accept(l.fd)
		if errors.Is(err, unix.EAGAIN) {
			break
		}
		if err != nil {
			acceptErrCnt.Add(ctx, 1, portAttr)
			logger.Error("failed to accept incoming connection", "port", l.port, "err", err, "at", location(err))
			continue
		}
		acceptCnt.Add(ctx, 1, portAttr)
		batch = append(batch, accepted{conn: newConn(fd, addr, l.loop, l.sockets), addr: addr})
	}

	if err := l.reg.Rearm(unix.EPOLLIN); err != nil {
		logger.Error("failed to re-arm listener", "port", l.port, "err", err)
	}
	l.mu.Unlock()

	for _, a := range batch {
		logger.Debug("new connection", "port", l.port, "peer", a.addr.String())
		l.onAccept(a.conn, a.addr)
	}
}

// Close cancels the readiness registration, closes the listening socket and
// stops the loop, which closes connections still in flight. Failures are
// logged, never returned.
func (l *Listener) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true

	ignoreAndLog("failed to cancel listener registration", l.reg.Cancel)
	ignoreAndLog("failed to close listening socket", func() error {
		return l.sockets.Close(l.fd)
	})
	l.mu.Unlock()

	l.loop.Close()
}
