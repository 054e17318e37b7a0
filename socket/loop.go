//go:build linux

package socket

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

const maxEvents = 128

// Handler is called with the epoll event mask once a registered descriptor
// becomes ready. Registrations are one-shot: the handler re-arms when it
// wants more events.
type Handler func(events uint32)

// Registration ties a descriptor to its handler. Handler calls for one
// registration never overlap.
type Registration struct {
	loop       *Loop
	fd         int
	gen        int32
	handler    Handler
	onShutdown func()

	mu        sync.Mutex
	cancelled atomic.Bool
}

type task struct {
	reg    *Registration
	events uint32
}

// Loop multiplexes readiness events of many descriptors over one epoll
// instance and runs their handlers on a group of workers. Events for one
// descriptor are handled in order, events for different descriptors in no
// particular order.
type Loop struct {
	Name string

	epfd   int
	wakefd int

	mu   sync.Mutex
	regs map[int32]*Registration
	gen  int32

	queue *RingBuffer[task]
	ready chan struct{}

	done       chan struct{}
	pollerDone chan struct{}
	workers    sync.WaitGroup
	closed     atomic.Bool
}

func NewLoop(name string, workers, queueSize int) (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, attempt("epoll_create1(2)", err)
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, attempt("eventfd(2)", err)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, attempt("epoll_ctl(2)", err)
	}

	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = DefaultQueueSize
	}

	l := &Loop{
		Name:       name,
		epfd:       epfd,
		wakefd:     wakefd,
		regs:       make(map[int32]*Registration),
		queue:      NewRingBuffer[task](queueSize),
		done:       make(chan struct{}),
		pollerDone: make(chan struct{}),
	}
	l.ready = make(chan struct{}, l.queue.Cap())

	for range workers {
		l.workers.Add(1)
		go l.work()
	}
	go l.poll()

	return l, nil
}

// Add registers fd for events. onShutdown, when set, is called if the loop
// closes while the registration is still active.
func (l *Loop) Add(fd int, events uint32, handler Handler, onShutdown func()) (*Registration, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}

	l.mu.Lock()
	l.gen++
	reg := &Registration{
		loop:       l,
		fd:         fd,
		gen:        l.gen,
		handler:    handler,
		onShutdown: onShutdown,
	}
	l.regs[int32(fd)] = reg
	l.mu.Unlock()

	ev := unix.EpollEvent{Events: events | unix.EPOLLONESHOT, Fd: int32(fd), Pad: reg.gen}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		reg.cancelled.Store(true)
		l.forget(reg)
		return nil, attempt("epoll_ctl(2)", err)
	}

	return reg, nil
}

// Rearm enables the next delivery of events.
func (r *Registration) Rearm(events uint32) error {
	if r.cancelled.Load() || r.loop.closed.Load() {
		return ErrClosed
	}

	ev := unix.EpollEvent{Events: events | unix.EPOLLONESHOT, Fd: int32(r.fd), Pad: r.gen}
	return attempt("epoll_ctl(2)", unix.EpollCtl(r.loop.epfd, unix.EPOLL_CTL_MOD, r.fd, &ev))
}

// Cancel removes the registration. Events already queued for it are
// dropped. Cancel must happen before the descriptor is closed.
func (r *Registration) Cancel() error {
	if !r.cancelled.CompareAndSwap(false, true) {
		return nil
	}

	r.loop.forget(r)
	if r.loop.closed.Load() {
		return nil
	}
	return attempt("epoll_ctl(2)", unix.EpollCtl(r.loop.epfd, unix.EPOLL_CTL_DEL, r.fd, nil))
}

func (l *Loop) forget(reg *Registration) {
	l.mu.Lock()
	if l.regs[int32(reg.fd)] == reg {
		delete(l.regs, int32(reg.fd))
	}
	l.mu.Unlock()
}

func (l *Loop) lookup(fd int32, gen int32) *Registration {
	l.mu.Lock()
	reg := l.regs[fd]
	l.mu.Unlock()

	if reg == nil || reg.gen != gen {
		return nil
	}
	return reg
}

func (l *Loop) poll() {
	defer close(l.pollerDone)

	events := make([]unix.EpollEvent, maxEvents)
	for {
		n, err := unix.EpollWait(l.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			logger.Error("event loop stopped", "loop", l.Name, "err", attempt("epoll_wait(2)", err))
			return
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			if int(ev.Fd) == l.wakefd {
				return
			}

			reg := l.lookup(ev.Fd, ev.Pad)
			if reg == nil {
				continue
			}
			l.dispatch(task{reg: reg, events: ev.Events})
		}
	}
}

func (l *Loop) dispatch(t task) {
	if err := l.queue.Enqueue(t); err != nil {
		// Every worker is behind; handle it here rather than drop it.
		l.execute(t)
		return
	}
	l.ready <- struct{}{}
}

func (l *Loop) work() {
	defer l.workers.Done()

	for {
		select {
		case <-l.ready:
			t, err := l.queue.Dequeue()
			if err != nil {
				continue
			}
			l.execute(t)
		case <-l.done:
			return
		}
	}
}

func (l *Loop) execute(t task) {
	reg := t.reg
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.cancelled.Load() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("readiness handler panicked", "loop", l.Name, "fd", reg.fd, "panic", r)
		}
	}()

	reg.handler(t.events)
}

// Close stops the loop and cancels every registration still active, which
// closes their descriptors. It must not be called from a handler.
func (l *Loop) Close() {
	if !l.closed.CompareAndSwap(false, true) {
		return
	}

	var one [8]byte
	binary.NativeEndian.PutUint64(one[:], 1)
	if _, err := unix.Write(l.wakefd, one[:]); err != nil {
		logger.Error("failed to wake event loop", "loop", l.Name, "err", attempt("write(2)", err))
	}

	<-l.pollerDone
	close(l.done)
	l.workers.Wait()

	l.mu.Lock()
	regs := make([]*Registration, 0, len(l.regs))
	for _, reg := range l.regs {
		regs = append(regs, reg)
	}
	l.mu.Unlock()

	for _, reg := range regs {
		if reg.onShutdown != nil {
			reg.onShutdown()
		} else {
			reg.Cancel()
		}
	}

	ignoreAndLog("failed to close eventfd", func() error {
		return attempt("close(2)", unix.Close(l.wakefd))
	})
	ignoreAndLog("failed to close epoll instance", func() error {
		return attempt("close(2)", unix.Close(l.epfd))
	})
}
