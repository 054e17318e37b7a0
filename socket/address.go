//go:build linux

package socket

import (
	"encoding/binary"
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"
)

const (
	familySize   = 2
	sockaddrIn4  = unix.SizeofSockaddrInet4
	sockaddrIn6  = unix.SizeofSockaddrInet6
	unknownAddr  = "<unknown>"
	portOffset   = 2
	in4AddrStart = 4
	in6AddrStart = 8
)

// Address is the peer address of an accepted connection, kept as the raw
// sockaddr bytes handed back by accept(2). The value is immutable.
type Address struct {
	raw string
}

// NewAddress copies raw into a new Address.
func NewAddress(raw []byte) Address {
	return Address{raw: string(raw)}
}

// Bytes returns a copy of the raw sockaddr.
func (a Address) Bytes() []byte {
	return []byte(a.raw)
}

// Family returns the address family discriminant, or 0 if the buffer is too
// short to hold one.
func (a Address) Family() uint16 {
	if len(a.raw) < familySize {
		return 0
	}
	return binary.NativeEndian.Uint16([]byte(a.raw[:familySize]))
}

// AddrPort decodes IPv4 and IPv6 addresses. ok is false for any other family
// or a truncated buffer.
func (a Address) AddrPort() (netip.AddrPort, bool) {
	b := []byte(a.raw)

	switch a.Family() {
	case unix.AF_INET:
		if len(b) < sockaddrIn4 {
			return netip.AddrPort{}, false
		}
		var ip [4]byte
		copy(ip[:], b[in4AddrStart:in4AddrStart+4])
		return netip.AddrPortFrom(netip.AddrFrom4(ip), binary.BigEndian.Uint16(b[portOffset:])), true
	case unix.AF_INET6:
		if len(b) < sockaddrIn6 {
			return netip.AddrPort{}, false
		}
		var ip [16]byte
		copy(ip[:], b[in6AddrStart:in6AddrStart+16])
		return netip.AddrPortFrom(netip.AddrFrom16(ip), binary.BigEndian.Uint16(b[portOffset:])), true
	}

	return netip.AddrPort{}, false
}

// String renders "host:port" for IPv4, "[host]:port" for IPv6 and
// "<unknown>" for everything else.
func (a Address) String() string {
	ap, ok := a.AddrPort()
	if !ok {
		return unknownAddr
	}

	port := strconv.Itoa(int(ap.Port()))
	if a.Family() == unix.AF_INET6 {
		return "[" + ap.Addr().String() + "]:" + port
	}
	return ap.Addr().String() + ":" + port
}
