//go:build linux

package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/freekieb7/sockhttp/http"
	"github.com/freekieb7/sockhttp/internal/telemetry"
	"github.com/freekieb7/sockhttp/socket"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const name = "github.com/freekieb7/sockhttp"

var (
	tracer  = otel.Tracer(name)
	meter   = otel.Meter(name)
	logger  = otelslog.NewLogger(name)
	rollCnt metric.Int64Counter
)

func init() {
	setDefaultEnv("OTEL_SERVICE_NAME", "sockhttp")
	setDefaultEnv("OTEL_RESOURCE_ATTRIBUTES", "service.namespace=sockhttp,deployment.environment=development")
	setDefaultEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://127.0.0.1:4317")
	setDefaultEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")

	var err error
	rollCnt, err = meter.Int64Counter("dice.rolls",
		metric.WithDescription("The number of rolls by roll value"),
		metric.WithUnit("{roll}"))
	if err != nil {
		panic(err)
	}
}

func setDefaultEnv(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		os.Setenv(key, value)
	}
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(os.LookupEnv)
	if err != nil {
		return err
	}

	otelShutdown, err := telemetry.Setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Println(err)
		}
	}()

	router := newRouter()

	server, err := http.NewServer("sockhttp", router.Handler(), cfg)
	if err != nil {
		return err
	}
	log.Printf("Listening on port %d", server.Port())

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRouter() http.Router {
	router := http.NewRouter()

	router.GET("/", func(req *http.Request, addr socket.Address, respond http.RespondFunc) {
		res := http.NewResponse(http.StatusOK, "")
		respond(res.WithText("hello world\n"))
	})

	router.GET("/roll", func(req *http.Request, addr socket.Address, respond http.RespondFunc) {
		spanCtx, span := tracer.Start(req.Context(), "roll")
		defer span.End()

		roll := 1 + rand.Intn(6)
		logger.InfoContext(spanCtx, "rolling the dice", "result", roll, "peer", addr.String())

		rollValueAttr := attribute.Int("roll.value", roll)
		span.SetAttributes(rollValueAttr)
		rollCnt.Add(spanCtx, 1, metric.WithAttributes(rollValueAttr))

		res := http.NewResponse(http.StatusOK, "")
		respond(res.WithText(strconv.Itoa(roll) + "\n"))
	})

	router.Group("/api", func(group *http.Router) {
		group.POST("/echo", func(req *http.Request, addr socket.Address, respond http.RespondFunc) {
			res := http.NewResponse(http.StatusOK, "")
			if v, ok := req.HeaderField("Content-Type"); ok {
				res.SetHeaderField("Content-Type", v)
			}
			res.SetBody(req.Body())
			respond(&res)
		})

		group.GET("/request", func(req *http.Request, addr socket.Address, respond http.RespondFunc) {
			res := http.NewResponse(http.StatusOK, "")
			out, err := res.WithJSON(map[string]any{
				"method":  req.Method(),
				"target":  req.Target(),
				"proto":   req.Proto(),
				"peer":    addr.String(),
				"headers": req.Headers(),
			})
			if err != nil {
				logger.ErrorContext(req.Context(), "failed to encode request", "err", err)
				res = http.NewResponse(http.StatusInternalServerError, "")
				out = &res
			}
			respond(out)
		})

		// Answered from another goroutine after the handler returned.
		group.GET("/later", func(req *http.Request, addr socket.Address, respond http.RespondFunc) {
			time.AfterFunc(50*time.Millisecond, func() {
				res := http.NewResponse(http.StatusOK, "")
				respond(res.WithText("sorry for the wait\n"))
			})
		})
	}, http.RecoverMiddleware(), http.EnsureCookieMiddleware("SID", 24*time.Hour))

	return router
}
