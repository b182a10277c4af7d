package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// ReadinessFunc adapts a function to ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

// CheckReadiness calls f.
func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// AlwaysReady is used when no background component gates readiness.
var AlwaysReady = ReadinessFunc(func(context.Context) error { return nil })

// Services are the domain collaborators behind the API routes.
type Services struct {
	Calculator     *domain.Calculator
	Densities      domain.DensityTable
	Gallery        domain.Gallery
	Ready          ReadinessChecker
	Metrics        *observability.Metrics
	AllowedOrigins []string
}

// Server exposes the impact API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	svc        Services
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the impact API routes and the
// /healthz, /readyz, and /metrics operational routes.
func NewServer(addr string, svc Services, logger *slog.Logger) *Server {
	if svc.Ready == nil {
		svc.Ready = AlwaysReady
	}
	mux := http.NewServeMux()

	s := &Server{
		svc:    svc,
		tracer: otel.Tracer(observability.TracerName),
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /calculate_impact", s.handleCalculate)
	mux.HandleFunc("GET /asteroid_gallery", s.handleGallery)
	mux.HandleFunc("GET /compositions", s.handleCompositions)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", handleNotFound)

	c := cors.New(cors.Options{
		AllowedOrigins: svc.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})

	handler := s.withRequestID(s.withRecovery(s.withMetrics(c.Handler(mux))))

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
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

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "endpoint_not_found"})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
