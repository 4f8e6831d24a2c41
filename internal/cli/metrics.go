package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes a registry on /metrics while the command runs.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// StartMetrics listens on addr and serves g in the background.
func StartMetrics(addr string, g prometheus.Gatherer, logger *log.Logger) (*MetricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && logger != nil {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	if logger != nil {
		logger.Info("serving metrics", "addr", ln.Addr().String())
	}
	return &MetricsServer{srv: srv, ln: ln}, nil
}

// Addr is the address actually listened on.
func (m *MetricsServer) Addr() string { return m.ln.Addr().String() }

// Close shuts the server down.
func (m *MetricsServer) Close(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
