//go:build linux

package http

import (
	"strings"
	"testing"
	"time"

	"github.com/freekieb7/sockhttp/socket"
	"github.com/freekieb7/sockhttp/test"
)

func mustRequest(t *testing.T, raw string) *Request {
	t.Helper()

	state, _ := feed([]byte(raw))
	req, ok := state.Request()
	if !ok {
		t.Fatalf("incomplete request %q: %v", raw, state.Err())
	}
	return req
}

// serve runs handler and returns the response it passed to respond.
func serve(t *testing.T, handler Handler, raw string) *Response {
	t.Helper()

	var (
		got   *Response
		calls int
	)
	handler(mustRequest(t, raw), socket.Address{}, func(res *Response) {
		calls++
		got = res
	})
	test.Equal(t, 1, calls)
	return got
}

func text(t *testing.T, name string) Handler {
	return func(req *Request, addr socket.Address, respond RespondFunc) {
		res := NewResponse(StatusOK, "")
		respond(res.WithText(name))
	}
}

func TestRouterDispatch(t *testing.T) {
	router := NewRouter()
	router.GET("/", text(t, "index"))
	router.POST("/items", text(t, "create"))
	router.Any([]string{"PUT", "PATCH"}, "/items", text(t, "update"))
	router.Group("/admin", func(group *Router) {
		group.GET("/users", text(t, "users"))
	})
	handler := router.Handler()

	tests := []struct {
		raw    string
		status int
		body   string
	}{
		{"GET / HTTP/1.1\r\n\r\n", StatusOK, "index"},
		{"GET /?page=2 HTTP/1.1\r\n\r\n", StatusOK, "index"},
		{"POST /items HTTP/1.1\r\nContent-Length: 0\r\n\r\n", StatusOK, "create"},
		{"PATCH /items HTTP/1.1\r\n\r\n", StatusOK, "update"},
		{"GET /admin/users HTTP/1.1\r\n\r\n", StatusOK, "users"},
		{"DELETE /items HTTP/1.1\r\n\r\n", StatusMethodNotAllowed, "Method Not Allowed"},
		{"GET /missing HTTP/1.1\r\n\r\n", StatusNotFound, "Not Found"},
	}

	for _, tt := range tests {
		res := serve(t, handler, tt.raw)
		test.Equal(t, tt.status, res.StatusCode())
		test.Equal(t, tt.body, string(res.Body()))
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(req *Request, addr socket.Address, respond RespondFunc) {
				order = append(order, name)
				next(req, addr, respond)
			}
		}
	}

	router := NewRouter()
	router.Group("/g", func(group *Router) {
		group.GET("/x", text(t, "x"), tag("route"))
	}, tag("group"))

	serve(t, router.Handler(), "GET /g/x HTTP/1.1\r\n\r\n")
	test.Equal(t, "group,route", strings.Join(order, ","))
}

func TestRecoverMiddleware(t *testing.T) {
	panicking := Chain(func(req *Request, addr socket.Address, respond RespondFunc) {
		panic("boom")
	}, RecoverMiddleware())

	res := serve(t, panicking, "GET / HTTP/1.1\r\n\r\n")
	test.Equal(t, StatusInternalServerError, res.StatusCode())

	lateRes := NewResponse(StatusOK, "")
	late := Chain(func(req *Request, addr socket.Address, respond RespondFunc) {
		respond(&lateRes)
		panic("after respond")
	}, RecoverMiddleware())

	res = serve(t, late, "GET / HTTP/1.1\r\n\r\n")
	test.Equal(t, StatusOK, res.StatusCode())
}

func TestEnsureCookieMiddleware(t *testing.T) {
	handler := Chain(text(t, "ok"), EnsureCookieMiddleware("SID", time.Hour))

	res := serve(t, handler, "GET / HTTP/1.1\r\n\r\n")
	cookie, ok := res.HeaderField("Set-Cookie")
	test.True(t, ok, "Set-Cookie missing")
	test.True(t, strings.HasPrefix(cookie, "SID="), cookie)
	test.True(t, strings.Contains(cookie, "HttpOnly; SameSite=Strict"), cookie)

	res = serve(t, handler, "GET / HTTP/1.1\r\nCookie: SID=abc\r\n\r\n")
	_, ok = res.HeaderField("Set-Cookie")
	test.True(t, !ok, "cookie reissued")
}
