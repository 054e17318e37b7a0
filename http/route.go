//go:build linux

package http

import "github.com/freekieb7/sockhttp/socket"

type Route struct {
	Methods []string
	Path    string
	Handler Handler
}

var NotFoundHandler Handler = func(req *Request, addr socket.Address, respond RespondFunc) {
	res := NewResponse(StatusNotFound, "")
	respond(res.WithText(StatusText(StatusNotFound)))
}

var MethodNotAllowedHandler Handler = func(req *Request, addr socket.Address, respond RespondFunc) {
	res := NewResponse(StatusMethodNotAllowed, "")
	respond(res.WithText(StatusText(StatusMethodNotAllowed)))
}
