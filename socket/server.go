//go:build linux

package socket

import "github.com/pkg/errors"

// Server accepts TCP connections on the first free port it finds and hands
// each one to its accept handler.
type Server struct {
	listener *Listener
}

func NewServer(cfg Config, onAccept AcceptFunc) (*Server, error) {
	return NewServerWithSockets(System{}, cfg, onAccept)
}

func NewServerWithSockets(sockets Sockets, cfg Config, onAccept AcceptFunc) (*Server, error) {
	l, err := Listen(sockets, cfg, onAccept)
	if err != nil {
		return nil, errors.Wrap(err, "socket: start server")
	}
	return &Server{listener: l}, nil
}

// Port is the port the server is bound to.
func (s *Server) Port() uint16 {
	return s.listener.Port()
}

func (s *Server) Close() {
	s.listener.Close()
}
