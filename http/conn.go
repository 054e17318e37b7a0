//go:build linux

package http

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/freekieb7/sockhttp/socket"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// connection drives one accepted connection from its first byte to close.
// Read callbacks never overlap; respond may arrive from any goroutine.
type connection struct {
	id      uuid.UUID
	stream  *socket.Stream
	addr    socket.Address
	handler Handler
	cfg     Config

	state       ParseState
	accumulated []byte
	received    int

	dispatched bool

	mu     sync.Mutex
	closed bool
}

// HandleConnection serves a single request on conn: it reads until the
// request is complete, passes it to handler and writes the response the
// handler supplies, then closes conn. A malformed request closes conn
// without calling handler. A zero MaxRequestSize in cfg means the default.
func HandleConnection(conn *socket.Conn, addr socket.Address, handler Handler, cfg Config) {
	cfg = cfg.withDefaults()

	stream, err := conn.OpenStream()
	if err != nil {
		logger.Error("failed to open stream", "peer", addr.String(), "err", err)
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "peer", addr.String(), "err", err)
		}
		return
	}
	stream.SetInterval(cfg.ReadInterval)

	c := &connection{
		id:      uuid.New(),
		stream:  stream,
		addr:    addr,
		handler: handler,
		cfg:     cfg,
	}
	logger.Debug("connection opened", "conn.id", c.id.String(), "peer", addr.String())

	stream.Read(c.onRead)
}

func (c *connection) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *connection) onRead(done bool, data []byte, err error) {
	if err != nil && !socket.IsCancelled(err) {
		logger.Error("error on connection", "conn.id", c.id.String(), "peer", c.addr.String(), "err", err)
	}
	if c.isClosed() {
		return
	}

	// One request per connection. Once it is dispatched the respond path
	// owns the close, so a half-closing peer still gets its response and
	// anything sent after the request is ignored.
	if c.dispatched {
		if err != nil {
			c.close()
		}
		return
	}

	if len(data) > 0 {
		c.received += len(data)
		if c.received > c.cfg.MaxRequestSize {
			c.fail(errors.Wrapf(ErrRequestTooLarge, "received %d bytes", c.received))
			return
		}

		c.accumulated = append(c.accumulated, data...)
		c.state, c.accumulated = c.state.Consume(c.accumulated)
	}

	switch c.state.Status() {
	case StateBodyIncomplete:
		if c.state.ExpectedBodyLength() > c.cfg.MaxRequestSize {
			c.fail(errors.Wrapf(ErrRequestTooLarge, "content-length %d", c.state.ExpectedBodyLength()))
			return
		}
	case StateComplete:
		c.dispatched = true
		c.accumulated = nil
		c.dispatch()
		if err != nil {
			c.close()
		}
		return
	case StateError:
		parseErrCnt.Add(context.Background(), 1)
		c.fail(c.state.Err())
		return
	}

	if done {
		c.fail(errors.Errorf("peer closed with request %s", c.state.Status()))
	}
}

func (c *connection) dispatch() {
	req, _ := c.state.Request()

	ctx := otel.GetTextMapPropagator().Extract(context.Background(), headerCarrier(req))
	ctx, span := tracer.Start(ctx, "HTTP "+req.Method(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method()),
			attribute.String("url.path", req.URL().Path),
			attribute.String("network.peer.address", c.addr.String()),
			attribute.String("conn.id", c.id.String()),
			attribute.Int("http.request.body.size", req.ContentLength()),
		))
	req.ctx = ctx

	requestCnt.Add(ctx, 1, metric.WithAttributes(attribute.String("http.request.method", req.Method())))
	start := time.Now()

	var once sync.Once
	respond := func(res *Response) {
		first := false
		once.Do(func() { first = true })
		if !first {
			logger.WarnContext(ctx, "respond called more than once", "conn.id", c.id.String())
			return
		}

		if res == nil {
			span.End()
			c.close()
			return
		}
		c.write(ctx, span, start, *res)
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.ErrorContext(ctx, "handler panicked", "conn.id", c.id.String(), "panic", r)

		// A response already issued owns the span and the close.
		unanswered := false
		once.Do(func() { unanswered = true })
		if !unanswered {
			return
		}
		span.SetStatus(codes.Error, "handler panicked")
		span.End()
		c.close()
	}()

	c.handler(req, c.addr, respond)
}

func (c *connection) write(ctx context.Context, span trace.Span, start time.Time, res Response) {
	if _, ok := res.HeaderField(headerDate); !ok {
		res.SetHeaderField(headerDate, FormatDate(time.Now()))
	}
	wire := res.Serialize()

	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode()))

	c.stream.Write(wire, func(err error) {
		statusAttr := metric.WithAttributes(attribute.Int("http.response.status_code", res.StatusCode()))

		switch {
		case err == nil:
			bytesWrittenCnt.Add(ctx, int64(len(wire)), statusAttr)
		case socket.IsCancelled(err):
		default:
			logger.ErrorContext(ctx, "failed to write response", "conn.id", c.id.String(), "err", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "write failed")
		}

		requestDuration.Record(ctx, time.Since(start).Seconds(), statusAttr)
		span.End()
		c.close()
	})
}

// fail drops the connection without a response.
func (c *connection) fail(err error) {
	logger.Debug("dropping connection", "conn.id", c.id.String(), "peer", c.addr.String(), "err", err)
	c.close()
}

func (c *connection) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	if err := c.stream.Close(); err != nil {
		logger.Error("failed to close connection", "conn.id", c.id.String(), "err", err)
	}
	logger.Debug("connection closed", "conn.id", c.id.String())
}

func headerCarrier(req *Request) propagation.MapCarrier {
	carrier := make(propagation.MapCarrier, len(req.msg.header))
	for _, name := range req.msg.names {
		carrier[strings.ToLower(name)] = req.msg.header[name]
	}
	return carrier
}
