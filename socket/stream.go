//go:build linux

package socket

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const maxReadPerWakeup = 16 * DefaultReadSize

var ErrWritePending = errors.New("socket: write already pending")

// ReadFunc receives the bytes read on one wakeup. data is owned by the
// callee. done reports that no further reads follow, either because the peer
// closed its side, an error occurred or the stream was closed (err is then
// ECANCELED).
type ReadFunc func(done bool, data []byte, err error)

// WriteFunc is called once a write has been fully flushed or has failed.
type WriteFunc func(err error)

// Stream is an asynchronous byte stream over a connection. Callbacks run on
// the connection's event loop and never overlap.
type Stream struct {
	conn *Conn
	reg  *Registration

	mu       sync.Mutex
	closed   bool
	interval time.Duration
	delayed  bool
	timer    *time.Timer

	readFn  ReadFunc
	scratch []byte

	pending []byte
	writeFn WriteFunc
}

// SetInterval sets the minimum time between two read deliveries. Data that
// arrives in between is coalesced into the next delivery.
func (s *Stream) SetInterval(d time.Duration) {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

// Read starts delivering incoming data to fn until the stream is done.
func (s *Stream) Read(fn ReadFunc) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn(true, nil, unix.ECANCELED)
		return
	}
	s.readFn = fn
	s.rearmLocked()
	s.mu.Unlock()
}

// Write sends data and reports the outcome to fn. Only one write may be
// outstanding at a time.
func (s *Stream) Write(data []byte, fn WriteFunc) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn(unix.ECANCELED)
		return
	}
	if s.pending != nil {
		s.mu.Unlock()
		fn(ErrWritePending)
		return
	}

	s.pending = data
	err := s.flushLocked()
	if err == nil && s.pending != nil {
		s.writeFn = fn
		s.rearmLocked()
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()

	fn(err)
}

// Close cancels the registration and closes the connection. Pending read
// and write callbacks are completed with ECANCELED.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	readFn, writeFn := s.readFn, s.writeFn
	s.readFn, s.writeFn, s.pending = nil, nil, nil
	if s.timer != nil {
		s.timer.Stop()
	}

	cancelErr := s.reg.Cancel()
	closeErr := s.conn.Close()
	s.mu.Unlock()

	if writeFn != nil {
		writeFn(unix.ECANCELED)
	}
	if readFn != nil {
		readFn(true, nil, unix.ECANCELED)
	}

	if cancelErr != nil {
		return cancelErr
	}
	return closeErr
}

func (s *Stream) onReady(events uint32) {
	if events&(unix.EPOLLOUT|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		s.flush()
	}
	if events&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		s.drain()
	}

	s.mu.Lock()
	if !s.closed {
		s.rearmLocked()
	}
	s.mu.Unlock()
}

func (s *Stream) flush() {
	s.mu.Lock()
	if s.closed || s.pending == nil {
		s.mu.Unlock()
		return
	}

	err := s.flushLocked()
	if err == nil && s.pending != nil {
		s.mu.Unlock()
		return
	}

	fn := s.writeFn
	s.writeFn, s.pending = nil, nil
	s.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}

// flushLocked writes as much of s.pending as the socket accepts. It leaves
// s.pending nil once everything is written.
func (s *Stream) flushLocked() error {
	for len(s.pending) > 0 {
		n, err := unix.SendmsgN(s.conn.fd, s.pending, nil, nil, unix.MSG_NOSIGNAL)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return attempt("sendmsg(2)", err)
		}
		s.pending = s.pending[n:]
	}
	s.pending = nil
	return nil
}

func (s *Stream) drain() {
	s.mu.Lock()
	if s.closed || s.readFn == nil {
		s.mu.Unlock()
		return
	}

	fn := s.readFn
	var (
		data []byte
		done bool
		rerr error
	)
	for len(data) < maxReadPerWakeup {
		n, err := unix.Read(s.conn.fd, s.scratch)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			break
		}
		if err != nil {
			rerr = attempt("read(2)", err)
			done = true
			break
		}
		if n == 0 {
			done = true
			break
		}
		data = append(data, s.scratch[:n]...)
	}

	if done {
		s.readFn = nil
	} else if len(data) > 0 && s.interval > 0 {
		s.delayLocked()
	}
	s.mu.Unlock()

	if done || len(data) > 0 {
		fn(done, data, rerr)
	}
}

func (s *Stream) delayLocked() {
	s.delayed = true
	s.timer = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.delayed = false
		if !s.closed {
			s.rearmLocked()
		}
	})
}

func (s *Stream) rearmLocked() {
	var events uint32
	if s.readFn != nil && !s.delayed {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if s.pending != nil {
		events |= unix.EPOLLOUT
	}
	if events == 0 {
		return
	}

	if err := s.reg.Rearm(events); err != nil && !errors.Is(err, ErrClosed) {
		logger.Error("failed to re-arm stream", "fd", s.conn.fd, "err", err)
	}
}
