package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServer exposes the default Prometheus registry over HTTP, shaped
// after the graceful start/shutdown pair nabbar-golib's httpserver package
// wraps around net/http.Server.
type HTTPServer struct {
	srv *http.Server
}

// NewPrometheusServer builds a metrics Server listening on addr and serving
// the default registry's families at path. PrometheusCollector registers
// into prometheus.DefaultRegisterer, so this and NewPrometheusCollector
// always describe the same metric set.
func NewPrometheusServer(addr, path string) *HTTPServer {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	return &HTTPServer{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start blocks serving metrics until the context is canceled or an error
// occurs other than the server closing.
func (s *HTTPServer) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops the metrics server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
