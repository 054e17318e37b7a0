//go:build linux

package http

import (
	"context"

	"github.com/freekieb7/sockhttp/socket"
	"github.com/pkg/errors"
)

// Server answers one HTTP request per connection on a port it picks from
// the configured range.
type Server struct {
	Name   string
	Config Config

	handler Handler
	server  *socket.Server
}

func NewServer(name string, handler Handler, cfg Config) (*Server, error) {
	return NewServerWithSockets(socket.System{}, name, handler, cfg)
}

func NewServerWithSockets(sockets socket.Sockets, name string, handler Handler, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()

	s := &Server{
		Name:    name,
		Config:  cfg,
		handler: handler,
	}

	server, err := socket.NewServerWithSockets(sockets, cfg.Socket, s.accept)
	if err != nil {
		return nil, errors.Wrapf(err, "http: start server %q", name)
	}
	s.server = server

	logger.Info("server started", "server", name, "port", server.Port())
	return s, nil
}

func (s *Server) accept(conn *socket.Conn, addr socket.Address) {
	HandleConnection(conn, addr, s.handler, s.Config)
}

// Port is the port the server is bound to.
func (s *Server) Port() uint16 {
	return s.server.Port()
}

// Shutdown stops accepting and closes every connection still open. It
// returns ctx's error when ctx ends first; the close then completes in the
// background.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.server.Close()
	}()

	select {
	case <-done:
		logger.Info("server stopped", "server", s.Name)
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "http: shutdown")
	}
}
