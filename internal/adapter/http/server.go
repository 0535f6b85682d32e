package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/firefront/internal/domain"
	"github.com/couchcryptid/firefront/internal/geometry"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 5 << 20

// Simulator runs simulations on behalf of the API.
type Simulator interface {
	Run(ctx context.Context, cfg domain.SimulationConfig) (domain.Result, error)
	SelfCheck(ctx context.Context) (domain.SelfCheckReport, error)
}

// Server exposes the simulation API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	sim        Simulator
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/simulate, /api/selftest,
// /healthz, /readyz, and /metrics routes.
func NewServer(addr string, sim Simulator, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      2 * time.Minute, // provider lookups plus up to 240 expansions
			IdleTimeout:       60 * time.Second,
		},
		sim:    sim,
		logger: logger,
	}

	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("GET /api/selftest", s.handleSelfTest)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	cfg, err := domain.ParseRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.sim.Run(r.Context(), cfg)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("simulation failed", "run_id", cfg.RunID, "error", err)
		}
		writeError(w, status, err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, res.FeatureCollection())
}

func (s *Server) handleSelfTest(w http.ResponseWriter, r *http.Request) {
	report, err := s.sim.SelfCheck(r.Context())
	if err != nil {
		s.logger.Error("self-check failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, geometry.ErrEmptyGeometry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, geometry.ErrInvalidGeometry), errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
