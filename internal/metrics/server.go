package metrics

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServer serves /metrics and /health on a side port, away from the
// API listener.
type HTTPServer struct {
	srv *http.Server
}

// Shutdown stops the metrics listener.
func (s *HTTPServer) Shutdown() error {
	return s.srv.Shutdown(context.Background())
}

// NewHTTPServer starts the metrics server on the given port.
func NewHTTPServer(port string) (*HTTPServer, error) {
	srv := &http.Server{Addr: ":" + port}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv.Handler = mux

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}
	slog.Info("metrics server listening", "addr", srv.Addr)
	go srv.Serve(ln)

	return &HTTPServer{srv: srv}, nil
}
