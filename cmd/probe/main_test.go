package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freekieb7/sockhttp/test"
)

func TestFetchRetriesUntilReady(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("hijacking unsupported")
			}
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.Write([]byte("ready"))
	}))
	defer srv.Close()

	out, err := fetch(context.Background(), srv.Client(), srv.URL+"/", 5*time.Second)
	test.NoError(t, err)

	test.True(t, strings.HasSuffix(out, "ready"), "unexpected body: "+out)
	test.Equal(t, int32(3), calls.Load())
}

func TestFetchGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := fetch(context.Background(), http.DefaultClient, url+"/", 200*time.Millisecond)
	if err == nil {
		t.Fatal("expected an error once the server is gone")
	}
}
