//go:build linux

package http

import "github.com/freekieb7/sockhttp/socket"

// RespondFunc completes a request. A nil response closes the connection
// without writing anything.
type RespondFunc func(res *Response)

// Handler is called once per connection with the complete request. It must
// call respond exactly once, either before returning or later from another
// goroutine.
type Handler func(req *Request, addr socket.Address, respond RespondFunc)
