//go:build linux

package socket

import (
	"encoding/binary"
	"testing"

	"github.com/freekieb7/sockhttp/test"
	"golang.org/x/sys/unix"
)

func rawInet4(ip [4]byte, port uint16) []byte {
	b := make([]byte, unix.SizeofSockaddrInet4)
	binary.NativeEndian.PutUint16(b, unix.AF_INET)
	binary.BigEndian.PutUint16(b[2:], port)
	copy(b[4:], ip[:])
	return b
}

func rawInet6(ip [16]byte, port uint16) []byte {
	b := make([]byte, unix.SizeofSockaddrInet6)
	binary.NativeEndian.PutUint16(b, unix.AF_INET6)
	binary.BigEndian.PutUint16(b[2:], port)
	copy(b[8:], ip[:])
	return b
}

func TestAddressString(t *testing.T) {
	loopback6 := [16]byte{15: 1}

	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"ipv4", rawInet4([4]byte{127, 0, 0, 1}, 8080), "127.0.0.1:8080"},
		{"ipv6", rawInet6(loopback6, 443), "[::1]:443"},
		{"unix", []byte{byte(unix.AF_UNIX), 0, '/', 't'}, "<unknown>"},
		{"truncated ipv4", rawInet4([4]byte{10, 0, 0, 1}, 80)[:6], "<unknown>"},
		{"empty", nil, "<unknown>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.Equal(t, tt.want, NewAddress(tt.raw).String())
		})
	}
}

func TestAddressIsImmutable(t *testing.T) {
	raw := rawInet4([4]byte{192, 168, 1, 2}, 9000)
	addr := NewAddress(raw)

	raw[4] = 10
	addr.Bytes()[5] = 10

	test.Equal(t, "192.168.1.2:9000", addr.String())
	test.Equal(t, uint16(unix.AF_INET), addr.Family())
}
