package http

import (
	"errors"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
)

// maxBodyBytes caps /calculate_impact request bodies.
const maxBodyBytes = 1 << 20

const sourceHTTP = "http"

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Asteroid impact API is running.",
	})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "calculate_impact", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "invalid_input", Message: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "could not read request body"})
		return
	}

	scenario, err := domain.ParseScenario(domain.RawEvent{Value: body})
	if err != nil {
		s.svc.Metrics.ObserveCalculation(sourceHTTP, 0, "", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: "request body must be a JSON object with numeric impact parameters"})
		return
	}
	if err := scenario.Validate(); err != nil {
		s.svc.Metrics.ObserveCalculation(sourceHTTP, 0, "", err)
		s.writeInvalidInput(w, err)
		return
	}

	in, composition := scenario.Resolve(s.svc.Densities)
	span.SetAttributes(
		attribute.Float64("impact.diameter_km", in.DiameterKm),
		attribute.Float64("impact.velocity_km_s", in.VelocityKmS),
		attribute.Float64("impact.angle_degrees", in.AngleDegrees),
		attribute.Float64("impact.density_kg_m3", in.DensityKgM3),
		attribute.String("impact.composition", composition),
	)

	res, err := s.svc.Calculator.Compute(in)
	s.svc.Metrics.ObserveCalculation(sourceHTTP, res.EnergyMegatonsTNT, string(res.DamageLevel), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid input")
		if errors.Is(err, domain.ErrInvalidInput) {
			s.writeInvalidInput(w, err)
			return
		}
		s.logger.ErrorContext(ctx, "impact calculation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_server_error"})
		return
	}

	span.SetAttributes(
		attribute.Float64("impact.energy_megatons", res.EnergyMegatonsTNT),
		attribute.String("impact.damage_level", string(res.DamageLevel)),
	)

	report := domain.BuildReport(scenario, composition, in, res)
	s.logger.DebugContext(ctx, "impact calculated",
		"scenario_id", report.ScenarioID,
		"megatons", res.EnergyMegatonsTNT,
		"damage_level", res.DamageLevel,
	)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeInvalidInput(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "invalid_input", Message: err.Error()}
	var invalid *domain.InvalidInputError
	if errors.As(err, &invalid) {
		resp.Field = invalid.Field
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Gallery.Gallery(r.Context())
	if err != nil {
		s.logger.WarnContext(r.Context(), "gallery unavailable", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "gallery_unavailable", Message: "asteroid gallery could not be loaded"})
		return
	}
	if page.Asteroids == nil {
		page.Asteroids = []domain.AsteroidPreset{}
	}
	writeJSON(w, http.StatusOK, page)
}

type compositionsResponse struct {
	Compositions       []domain.Composition `json:"compositions"`
	DefaultDensityKgM3 float64              `json:"default_density_kg_m3"`
}

func (s *Server) handleCompositions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, compositionsResponse{
		Compositions:       s.svc.Densities.Compositions(),
		DefaultDensityKgM3: s.svc.Densities.Fallback(),
	})
}
