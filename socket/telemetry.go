package socket

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const name = "github.com/freekieb7/sockhttp/socket"

var (
	meter  = otel.Meter(name)
	logger = otelslog.NewLogger(name)

	acceptCnt      metric.Int64Counter
	acceptErrCnt   metric.Int64Counter
	readinessCnt   metric.Int64Counter
	openConnsGauge metric.Int64UpDownCounter
)

func init() {
	var err error
	acceptCnt, err = meter.Int64Counter("socket.accepts",
		metric.WithDescription("The number of accepted connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		panic(err)
	}

	acceptErrCnt, err = meter.Int64Counter("socket.accept.errors",
		metric.WithDescription("The number of failed accept calls"),
		metric.WithUnit("{error}"))
	if err != nil {
		panic(err)
	}

	readinessCnt, err = meter.Int64Counter("socket.listener.wakeups",
		metric.WithDescription("The number of readiness events on listening sockets"),
		metric.WithUnit("{event}"))
	if err != nil {
		panic(err)
	}

	openConnsGauge, err = meter.Int64UpDownCounter("socket.connections.open",
		metric.WithDescription("The number of connections currently open"),
		metric.WithUnit("{connection}"))
	if err != nil {
		panic(err)
	}
}
