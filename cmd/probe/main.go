// Command probe waits for a sockhttp server to accept connections and then
// requests each path given on the command line, printing the replies.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/freekieb7/sockhttp/internal/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const name = "github.com/freekieb7/sockhttp/cmd/probe"

var (
	tracer = otel.Tracer(name)
	logger = otelslog.NewLogger(name)
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "server address")
	wait := flag.Duration("wait", 10*time.Second, "how long to wait for the server to come up")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"/"}
	}

	if err := run(context.Background(), *addr, *wait, paths); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, addr string, wait time.Duration, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	otelShutdown, err := telemetry.Setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			log.Println(err)
		}
	}()

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   5 * time.Second,
	}

	for _, path := range paths {
		body, err := fetch(ctx, client, "http://"+addr+path, wait)
		if err != nil {
			return err
		}
		fmt.Print(body)
	}
	return nil
}

// fetch retries with exponential backoff until the server answers or wait
// runs out. Any reply, whatever its status, ends the retries.
func fetch(ctx context.Context, client *http.Client, url string, wait time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "probe "+url)
	defer span.End()

	var out string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		res, err := client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return err
		}

		out = fmt.Sprintf("%s %s\n%s", res.Proto, res.Status, body)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = wait

	notify := func(err error, next time.Duration) {
		logger.DebugContext(ctx, "server not ready", "url", url, "err", err, "retry_in", next)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return "", errors.Wrapf(err, "probe %s", url)
	}
	return out, nil
}
