package http

import (
	"bytes"
	"context"
	"maps"
	"net/url"
)

// Request is a read-only view of a completely received request.
type Request struct {
	msg  *message
	body []byte
	ctx  context.Context
}

func (req *Request) Method() string {
	return req.msg.method
}

// Target is the request-target exactly as received.
func (req *Request) Target() string {
	return req.msg.target
}

func (req *Request) URL() *url.URL {
	u := *req.msg.url
	return &u
}

func (req *Request) Proto() string {
	return req.msg.proto
}

// Headers returns a copy of the header fields, keyed as received.
func (req *Request) Headers() map[string]string {
	return maps.Clone(req.msg.header)
}

// HeaderField looks a header field up by name, ignoring case.
func (req *Request) HeaderField(name string) (string, bool) {
	return req.msg.lookup(name)
}

func (req *Request) Body() []byte {
	return bytes.Clone(req.body)
}

func (req *Request) ContentLength() int {
	return len(req.body)
}

// Context carries the request span. It is never nil.
func (req *Request) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx
}
