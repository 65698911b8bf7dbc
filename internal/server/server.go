package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/infodancer/chatd/internal/config"
	"github.com/infodancer/chatd/internal/logging"
	"github.com/infodancer/chatd/internal/metrics"
)

// ConnectionHandler processes a single accepted connection until the client
// disconnects or the session ends. It owns conn for the lifetime of the call.
type ConnectionHandler func(ctx context.Context, conn net.Conn)

// Server coordinates one or more TCP listeners and dispatches accepted
// connections to a ConnectionHandler, enforcing the configured connection
// limit across all listeners combined.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector metrics.Collector
	handler   ConnectionHandler
	limiter   *ConnectionLimiter

	mu        sync.Mutex
	listeners []net.Listener
}

// Config holds configuration for creating a new Server.
type Config struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Collector metrics.Collector
}

// New creates a new Server with the given configuration.
func New(sc Config) (*Server, error) {
	logger := sc.Logger
	if logger == nil {
		logger = logging.NewLogger(sc.Cfg.LogLevel)
	}
	collector := sc.Collector
	if collector == nil {
		collector = &metrics.NoopCollector{}
	}

	return &Server{
		cfg:       sc.Cfg,
		logger:    logger,
		collector: collector,
		limiter:   NewConnectionLimiter(sc.Cfg.Limits.MaxConnections),
	}, nil
}

// SetHandler sets the connection handler for all listeners.
// Must be called before Run.
func (s *Server) SetHandler(handler ConnectionHandler) {
	s.handler = handler
}

// Run opens every configured listener and accepts connections until ctx is
// cancelled, at which point every listener is closed and Run waits for the
// accept loops to return. Each listener's accept loop is supervised by an
// errgroup.Group so the first fatal Accept error tears down the others.
func (s *Server) Run(ctx context.Context) error {
	if s.handler == nil {
		return errors.New("server: no connection handler set")
	}

	s.mu.Lock()
	for _, lc := range s.cfg.Listeners {
		ln, err := net.Listen("tcp", lc.Address)
		if err != nil {
			s.closeListenersLocked()
			s.mu.Unlock()
			return fmt.Errorf("listen %s: %w", lc.Address, err)
		}
		s.listeners = append(s.listeners, ln)
	}
	listeners := append([]net.Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Info("starting server",
		slog.String("hostname", s.cfg.Hostname),
		slog.Int("listener_count", len(listeners)),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, ln := range listeners {
		ln := ln
		g.Go(func() error {
			return s.acceptLoop(gctx, ln)
		})
	}

	// Close every listener as soon as gctx is done (ctx canceled, or one
	// accept loop failed), which unblocks each Accept() with a "use of
	// closed network connection" error that acceptLoop treats as a clean
	// shutdown signal.
	go func() {
		<-gctx.Done()
		s.mu.Lock()
		s.closeListenersLocked()
		s.mu.Unlock()
	}()

	err := g.Wait()
	s.logger.Info("server stopped")
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	addr := ln.Addr().String()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("listener %s: %w", addr, err)
		}

		if !s.limiter.TryAcquire() {
			s.logger.Warn("connection limit reached, rejecting", slog.String("remote", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		s.collector.ConnectionOpened()
		go func() {
			defer s.limiter.Release()
			defer s.collector.ConnectionClosed()
			defer conn.Close()
			connCtx := logging.Into(ctx, s.logger)
			s.handler(connCtx, conn)
		}()
	}
}

// closeListenersLocked closes every listener. Caller must hold s.mu.
func (s *Server) closeListenersLocked() {
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Config returns the server's configuration.
func (s *Server) Config() *config.Config {
	return s.cfg
}

// Handler returns the configured connection handler, if any.
func (s *Server) Handler() ConnectionHandler {
	return s.handler
}
