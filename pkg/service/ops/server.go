// Package ops exposes the operational HTTP surface of the bot: liveness
// and Prometheus metrics. It is optional and runs beside the update loop.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"superbot/pkg/utils/logging"
)

// Server is the ops HTTP server
type Server struct {
	httpServer *http.Server
}

// NewServer creates an ops server listening on addr
func NewServer(addr string) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// NewRouter builds the ops routes
func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health/live", handleLive)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func handleLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Start runs the server in the background. Listen failures are logged,
// never fatal: the bot keeps working without its ops surface.
func (s *Server) Start(ctx context.Context) {
	logger := logging.From(ctx)
	logger.Info("starting ops server", "addr", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
