//go:build linux

package socket

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

//go:generate mockgen -destination=mock_sockets_test.go -package=socket . Sockets

// Domain selects the address family of a stream socket.
type Domain int

const (
	Inet  Domain = unix.AF_INET
	Inet6 Domain = unix.AF_INET6
)

// Sockets is the set of raw socket operations the listener depends on.
// Every failure is an *Error carrying the syscall name and errno.
type Sockets interface {
	Open(domain Domain) (int, error)
	Bind(fd int, domain Domain, port uint16) error
	SetNonBlocking(fd int) error
	Listen(fd int, backlog int) error
	Accept(fd int) (int, Address, error)
	Pending(fd int) (int, error)
	Close(fd int) error
}

// System implements Sockets on top of the Linux syscalls.
type System struct{}

func (System) Open(domain Domain) (int, error) {
	fd, err := unix.Socket(int(domain), unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, attempt("socket(2)", err)
	}
	return fd, nil
}

// Bind binds fd to the wildcard address of domain on port.
func (System) Bind(fd int, domain Domain, port uint16) error {
	var sa unix.Sockaddr
	switch domain {
	case Inet6:
		sa = &unix.SockaddrInet6{Port: int(port)}
	default:
		sa = &unix.SockaddrInet4{Port: int(port)}
	}
	return attempt("bind(2)", unix.Bind(fd, sa))
}

func (System) SetNonBlocking(fd int) error {
	return attempt("fcntl(2)", unix.SetNonblock(fd, true))
}

func (System) Listen(fd int, backlog int) error {
	return attempt("listen(2)", unix.Listen(fd, backlog))
}

// Accept accepts one pending connection. The peer address is returned as the
// raw bytes the kernel filled in, which may be longer than a sockaddr.
func (System) Accept(fd int) (int, Address, error) {
	var rsa unix.RawSockaddrAny
	length := uint32(unix.SizeofSockaddrAny)

	nfd, _, errno := unix.Syscall6(
		unix.SYS_ACCEPT4,
		uintptr(fd),
		uintptr(unsafe.Pointer(&rsa)),
		uintptr(unsafe.Pointer(&length)),
		uintptr(unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC),
		0,
		0,
	)
	if errno != 0 {
		return -1, Address{}, attempt("accept(2)", errno)
	}

	if length > unix.SizeofSockaddrAny {
		length = unix.SizeofSockaddrAny
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&rsa)), length)

	return int(nfd), NewAddress(raw), nil
}

// Pending returns the number of connections waiting in the accept queue of a
// listening socket. For sockets in LISTEN state the kernel reports the
// current backlog in tcpi_unacked.
func (System) Pending(fd int) (int, error) {
	info, err := unix.GetsockoptTCPInfo(fd, unix.IPPROTO_TCP, unix.TCP_INFO)
	if err != nil {
		return 0, attempt("getsockopt(2)", err)
	}
	return int(info.Unacked), nil
}

func (System) Close(fd int) error {
	return attempt("close(2)", unix.Close(fd))
}
