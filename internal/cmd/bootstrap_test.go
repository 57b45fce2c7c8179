package cmd

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/yetidevworks/raygun/internal/logging"
)

func TestShutdownServerGraceful(t *testing.T) {
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go server.Serve(ln)
	time.Sleep(10 * time.Millisecond)

	start := time.Now()
	shutdownServer(server, logging.New())
	if elapsed := time.Since(start); elapsed >= shutdownGrace {
		t.Errorf("graceful shutdown took %v, want well under %v", elapsed, shutdownGrace)
	}

	if _, err := http.Get("http://" + ln.Addr().String()); err == nil {
		t.Error("expected connection to closed listener to fail")
	}
}

func TestShutdownServerAbortsOnHang(t *testing.T) {
	block := make(chan struct{})
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
		w.WriteHeader(http.StatusOK)
	})}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go server.Serve(ln)
	time.Sleep(10 * time.Millisecond)

	reqDone := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+ln.Addr().String(), nil)
		http.DefaultClient.Do(req)
		close(reqDone)
	}()
	time.Sleep(10 * time.Millisecond)

	start := time.Now()
	shutdownServer(server, logging.New())
	elapsed := time.Since(start)

	if elapsed < shutdownGrace {
		t.Errorf("abort-on-hang shutdown took %v, want at least %v", elapsed, shutdownGrace)
	}
	if elapsed > shutdownGrace+time.Second {
		t.Errorf("abort-on-hang shutdown took %v, want close to %v", elapsed, shutdownGrace)
	}

	close(block)
	<-reqDone
}
