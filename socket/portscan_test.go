//go:build linux

package socket

import (
	"testing"

	"github.com/freekieb7/sockhttp/test"
	"github.com/pkg/errors"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"
)

func bindErr(errno unix.Errno) error {
	return &Error{Op: "bind(2)", Errno: errno}
}

func TestBindAnyPortSkipsPortsInUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	sockets := NewMockSockets(ctrl)

	gomock.InOrder(
		sockets.EXPECT().Bind(3, Inet, uint16(8000)).Return(bindErr(unix.EADDRINUSE)),
		sockets.EXPECT().Bind(3, Inet, uint16(8001)).Return(bindErr(unix.EADDRINUSE)),
		sockets.EXPECT().Bind(3, Inet, uint16(8002)).Return(nil),
	)

	port, err := BindAnyPort(sockets, 3, Inet, 8000, 8010)
	test.NoError(t, err)
	test.Equal(t, uint16(8002), port)
}

func TestBindAnyPortStopsOnOtherErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	sockets := NewMockSockets(ctrl)

	sockets.EXPECT().Bind(3, Inet, uint16(8000)).Return(bindErr(unix.EACCES))

	_, err := BindAnyPort(sockets, 3, Inet, 8000, 8010)
	test.ErrorIs(t, err, unix.EACCES)

	var sockErr *Error
	if !errors.As(err, &sockErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	test.Equal(t, "bind(2)", sockErr.Op)
}

func TestBindAnyPortExhaustsRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	sockets := NewMockSockets(ctrl)

	sockets.EXPECT().Bind(3, Inet, gomock.Any()).Return(bindErr(unix.EADDRINUSE)).Times(3)

	_, err := BindAnyPort(sockets, 3, Inet, 9998, 10000)
	test.ErrorIs(t, err, ErrNoPortAvailable)
}

func TestBindAnyPortDoesNotWrapAroundAtMaxPort(t *testing.T) {
	ctrl := gomock.NewController(t)
	sockets := NewMockSockets(ctrl)

	sockets.EXPECT().Bind(3, Inet, uint16(65535)).Return(bindErr(unix.EADDRINUSE))

	_, err := BindAnyPort(sockets, 3, Inet, 65535, 65535)
	test.ErrorIs(t, err, ErrNoPortAvailable)
}

func TestScanStart(t *testing.T) {
	r := PortRange{First: DefaultFirstPort, Spread: DefaultPortSpread, Last: DefaultLastPort}

	for seed := int64(1); seed <= 200; seed++ {
		start := ScanStart(r, seed)
		if start < r.First || start >= r.First+r.Spread {
			t.Fatalf("seed %d: start %d outside [%d, %d)", seed, start, r.First, r.First+r.Spread)
		}
		test.Equal(t, start, ScanStart(r, seed))
	}

	test.Equal(t, uint16(8500), ScanStart(PortRange{First: 8500, Last: 9000}, 42))
}

func TestErrorReportsCallSite(t *testing.T) {
	err := attempt("listen(2)", unix.EBADF)

	var sockErr *Error
	if !errors.As(err, &sockErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	test.Equal(t, "listen(2)", sockErr.Op)
	test.Equal(t, unix.EBADF, sockErr.Errno)
	test.Equal(t, "portscan_test.go", sockErr.File)
	test.True(t, sockErr.Line > 0, "missing line")
	test.Equal(t, "listen(2) failed: bad file descriptor (9)", err.Error())

	test.True(t, attempt("close(2)", nil) == nil, "nil error must stay nil")
}
