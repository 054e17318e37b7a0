package socket

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var (
	ErrNoPortAvailable = errors.New("socket: no port available")
	ErrClosed          = errors.New("socket: use of closed socket")
)

// Error is returned by every failing socket primitive. It names the
// syscall, keeps the raw errno and remembers where the call was made.
type Error struct {
	Op    string
	Errno unix.Errno
	File  string
	Line  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %s (%d)", e.Op, e.Errno.Error(), int(e.Errno))
}

func (e *Error) Unwrap() error {
	return e.Errno
}

// Location reports the call site as file:line.
func (e *Error) Location() string {
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

// attempt turns the error of a raw syscall into an *Error. A nil err stays nil.
func attempt(op string, err error) error {
	if err == nil {
		return nil
	}

	errno, ok := err.(unix.Errno)
	if !ok {
		return errors.Wrap(err, op)
	}

	e := &Error{Op: op, Errno: errno}
	if _, file, line, ok := runtime.Caller(1); ok {
		e.File = filepath.Base(file)
		e.Line = line
	}
	return e
}

// IsCancelled reports whether err is the expected result of closing a
// descriptor that still had pending work.
func IsCancelled(err error) bool {
	return errors.Is(err, unix.ECANCELED)
}

// location is the call site recorded in err, if any.
func location(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Location()
	}
	return ""
}

func ignoreAndLog(msg string, fn func() error) {
	if err := fn(); err != nil {
		logger.Error(msg, "err", err, "at", location(err))
	}
}
