//go:build linux

package http

import (
	"crypto/rand"
	"encoding/base64"
	"sync/atomic"
	"time"

	"github.com/freekieb7/sockhttp/socket"
	"github.com/pkg/errors"
)

type Middleware func(next Handler) Handler

// Chain wraps handler in middleware. The last middleware runs first.
func Chain(handler Handler, middleware ...Middleware) Handler {
	for _, mw := range middleware {
		handler = mw(handler)
	}
	return handler
}

// RecoverMiddleware answers 500 when the handler panics before responding.
// A panic after the response was sent is only logged.
func RecoverMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(req *Request, addr socket.Address, respond RespondFunc) {
			var responded atomic.Bool
			guarded := func(res *Response) {
				responded.Store(true)
				respond(res)
			}

			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(req.Context(), "recovered from handler panic", "panic", r, "path", req.URL().Path)
					if responded.Load() {
						return
					}

					res := NewResponse(StatusInternalServerError, "")
					respond(res.WithText("something went wrong"))
				}
			}()

			next(req, addr, guarded)
		}
	}
}

// EnsureCookieMiddleware issues a random cookie called name to clients that
// do not send one yet.
func EnsureCookieMiddleware(name string, maxAge time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(req *Request, addr socket.Address, respond RespondFunc) {
			_, err := req.Cookie(name)
			if !errors.Is(err, ErrNoCookie) {
				next(req, addr, respond)
				return
			}

			raw := make([]byte, 16)
			if _, err := rand.Read(raw); err != nil {
				logger.ErrorContext(req.Context(), "failed to generate cookie value", "err", err)
				next(req, addr, respond)
				return
			}

			cookie := Cookie{
				Name:     name,
				Value:    base64.URLEncoding.EncodeToString(raw),
				Path:     "/",
				HttpOnly: true,
				SameSite: SameSiteStrictMode,
			}
			cookie.SetExpiry(maxAge)

			next(req, addr, func(res *Response) {
				if res != nil {
					if err := res.AddCookie(&cookie); err != nil {
						logger.ErrorContext(req.Context(), "failed to set cookie", "cookie", name, "err", err)
					}
				}
				respond(res)
			})
		}
	}
}
