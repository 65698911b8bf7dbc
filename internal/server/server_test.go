package server

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/infodancer/chatd/internal/config"
)

func testConfig(addr string, max int) *config.Config {
	cfg := config.Default()
	cfg.Listeners = []config.ListenerConfig{{Address: addr}}
	cfg.Limits.MaxConnections = max
	return &cfg
}

func TestServerRunRequiresHandler(t *testing.T) {
	srv, err := New(Config{Cfg: testConfig("127.0.0.1:0", 10)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error when no handler is set")
	}
}

func TestServerAcceptsAndDispatches(t *testing.T) {
	srv, err := New(Config{Cfg: testConfig("127.0.0.1:0", 10)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var handled atomic.Int32
	done := make(chan struct{})
	srv.SetHandler(func(ctx context.Context, conn net.Conn) {
		handled.Add(1)
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- srv.Run(ctx) }()

	addr := waitForListener(t, srv)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	if handled.Load() != 1 {
		t.Errorf("handled = %d, want 1", handled.Load())
	}

	cancel()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestServerRejectsOverLimit(t *testing.T) {
	srv, err := New(Config{Cfg: testConfig("127.0.0.1:0", 1)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	block := make(chan struct{})
	srv.SetHandler(func(ctx context.Context, conn net.Conn) {
		<-block
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	addr := waitForListener(t, srv)

	first, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer first.Close()

	// give the accept loop a moment to register the first connection
	time.Sleep(50 * time.Millisecond)

	second, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer second.Close()

	// The server should close the second connection without the handler
	// ever reading from it, since the limiter is already saturated.
	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err = second.Read(buf)
	if err == nil {
		t.Error("expected second connection to be closed by the server")
	}

	close(block)
}

func waitForListener(t *testing.T, srv *Server) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		srv.mu.Lock()
		n := len(srv.listeners)
		var addr string
		if n > 0 {
			addr = srv.listeners[0].Addr().String()
		}
		srv.mu.Unlock()
		if n > 0 {
			return addr
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("listener never came up")
	return ""
}
