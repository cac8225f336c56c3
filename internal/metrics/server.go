package metrics

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPort is used when no metrics port is configured.
const DefaultPort = 9090

// NewHTTPServer creates an HTTP server that exposes Prometheus metrics at
// /metrics and a liveness probe at /healthz.
func NewHTTPServer(address string, port int) *http.Server {
	if port == 0 {
		port = DefaultPort
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              net.JoinHostPort(address, strconv.Itoa(port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
