//go:build linux

package http

import (
	"net/http"
	"slices"

	"github.com/freekieb7/sockhttp/socket"
)

// Router dispatches requests to the handler registered for their path and
// method. Routes match exactly; the first registered match wins.
type Router struct {
	Routes []Route
}

func NewRouter() Router {
	return Router{
		Routes: make([]Route, 0),
	}
}

func (router *Router) GET(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{http.MethodGet}, path, handler, middleware...)
}

func (router *Router) HEAD(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{http.MethodHead}, path, handler, middleware...)
}

func (router *Router) POST(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{http.MethodPost}, path, handler, middleware...)
}

func (router *Router) PUT(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{http.MethodPut}, path, handler, middleware...)
}

func (router *Router) PATCH(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{http.MethodPatch}, path, handler, middleware...)
}

func (router *Router) DELETE(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{http.MethodDelete}, path, handler, middleware...)
}

func (router *Router) OPTIONS(path string, handler Handler, middleware ...Middleware) {
	router.Any([]string{http.MethodOptions}, path, handler, middleware...)
}

func (router *Router) Any(methods []string, path string, handler Handler, middleware ...Middleware) {
	router.Routes = append(router.Routes, Route{
		Methods: methods,
		Path:    path,
		Handler: Chain(handler, middleware...),
	})
}

func (router *Router) Group(path string, groupFunc func(group *Router), middleware ...Middleware) {
	group := NewRouter()

	groupFunc(&group)

	for _, route := range group.Routes {
		route.Path = path + route.Path
		route.Handler = Chain(route.Handler, middleware...)
		router.Routes = append(router.Routes, route)
	}
}

// Handler returns the router as a connection handler. A path without any
// route gets 404, a path whose routes all want another method gets 405.
func (router *Router) Handler() Handler {
	routes := slices.Clone(router.Routes)

	return func(req *Request, addr socket.Address, respond RespondFunc) {
		path := req.URL().Path
		method := req.Method()

		handler := NotFoundHandler
		for _, route := range routes {
			if route.Path != path {
				continue
			}
			if slices.Contains(route.Methods, method) {
				handler = route.Handler
				break
			}
			handler = MethodNotAllowedHandler
		}

		handler(req, addr, respond)
	}
}
