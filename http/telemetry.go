package http

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const name = "github.com/freekieb7/sockhttp/http"

var (
	tracer = otel.Tracer(name)
	meter  = otel.Meter(name)
	logger = otelslog.NewLogger(name)

	requestCnt      metric.Int64Counter
	parseErrCnt     metric.Int64Counter
	bytesWrittenCnt metric.Int64Counter
	requestDuration metric.Float64Histogram
)

func init() {
	var err error
	requestCnt, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("The number of completely received requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		panic(err)
	}

	parseErrCnt, err = meter.Int64Counter("http.server.parse_errors",
		metric.WithDescription("The number of connections dropped for a malformed request"),
		metric.WithUnit("{error}"))
	if err != nil {
		panic(err)
	}

	bytesWrittenCnt, err = meter.Int64Counter("http.server.response.size",
		metric.WithDescription("The number of response bytes written"),
		metric.WithUnit("By"))
	if err != nil {
		panic(err)
	}

	requestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time from a complete request to the end of its response"),
		metric.WithUnit("s"))
	if err != nil {
		panic(err)
	}
}
