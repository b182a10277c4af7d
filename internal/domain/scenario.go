package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied to scenario fields the caller leaves out.
const (
	DefaultDiameterKm   = 1.0
	DefaultVelocityKmS  = 20.0
	DefaultAngleDegrees = 45.0
	DefaultComposition  = "stony"

	// CustomComposition labels scenarios that supply an explicit density.
	CustomComposition = "custom"
)

var scenarioValidate *validator.Validate

func init() {
	scenarioValidate = validator.New()

	// Report JSON field names so error messages match the request body.
	scenarioValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Scenario is an impact request as received from a caller. Every numeric
// field is optional; Resolve fills the gaps with defaults.
type Scenario struct {
	ID           string   `json:"id,omitempty" validate:"omitempty,max=128"`
	DiameterKm   *float64 `json:"diameter_km,omitempty" validate:"omitempty,gt=0"`
	VelocityKmS  *float64 `json:"velocity_km_s,omitempty" validate:"omitempty,gt=0"`
	AngleDegrees *float64 `json:"angle_degrees,omitempty" validate:"omitempty,gt=0,lte=90"`
	DensityKgM3  *float64 `json:"density_kg_m3,omitempty" validate:"omitempty,gt=0"`
	Composition  string   `json:"composition,omitempty" validate:"omitempty,max=64"`
}

// ImpactReport is a computed scenario ready for publication.
type ImpactReport struct {
	ScenarioID  string       `json:"scenario_id"`
	Composition string       `json:"composition"`
	Input       ImpactInput  `json:"input"`
	Result      ImpactResult `json:"impact_results"`
	ComputedAt  time.Time    `json:"computed_at"`
}

// ParseScenario deserializes a RawEvent's value into a Scenario.
func ParseScenario(raw RawEvent) (Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(raw.Value, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	return s, nil
}

// Validate checks the request shape. The first failing field is reported as
// an *InvalidInputError.
func (s Scenario) Validate() error {
	err := scenarioValidate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return newInvalidInput(fe.Field(), fe.Value(), describeRule(fe))
	}
	return fmt.Errorf("validate scenario: %w", err)
}

// Resolve applies defaults and looks up the density, returning the
// calculator input and the composition label that produced it. An explicit
// density takes precedence over the composition name.
func (s Scenario) Resolve(table DensityTable) (ImpactInput, string) {
	in := ImpactInput{
		DiameterKm:   valueOr(s.DiameterKm, DefaultDiameterKm),
		VelocityKmS:  valueOr(s.VelocityKmS, DefaultVelocityKmS),
		AngleDegrees: valueOr(s.AngleDegrees, DefaultAngleDegrees),
	}

	composition := normalizeComposition(s.Composition)
	if s.DensityKgM3 != nil {
		in.DensityKgM3 = *s.DensityKgM3
		if composition == "" {
			composition = CustomComposition
		}
		return in, composition
	}

	if composition == "" {
		composition = DefaultComposition
	}
	in.DensityKgM3, _ = table.Resolve(composition)
	return in, composition
}

// BuildReport assembles a report for a computed scenario. The scenario ID is
// kept when the caller supplied one, otherwise derived from the input.
func BuildReport(s Scenario, composition string, in ImpactInput, res ImpactResult) ImpactReport {
	id := s.ID
	if id == "" {
		id = ScenarioID(in)
	}
	return ImpactReport{
		ScenarioID:  id,
		Composition: composition,
		Input:       in,
		Result:      res,
		ComputedAt:  clock.Now().UTC(),
	}
}

// SerializeReport marshals a report into an OutputEvent keyed by scenario ID.
func SerializeReport(r ImpactReport) (OutputEvent, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize impact report: %w", err)
	}
	return OutputEvent{
		Key:   []byte(r.ScenarioID),
		Value: data,
		Headers: map[string]string{
			"damage_level": string(r.Result.DamageLevel),
			"computed_at":  r.ComputedAt.Format(time.RFC3339),
		},
	}, nil
}

// ScenarioID produces a deterministic ID from the resolved input, so the same
// scenario replayed through the stream keeps its key.
func ScenarioID(in ImpactInput) string {
	key := fmt.Sprintf("%g|%g|%g|%g", in.DiameterKm, in.VelocityKmS, in.AngleDegrees, in.DensityKgM3)
	hash := sha256.Sum256([]byte(key))
	return "impact-" + hex.EncodeToString(hash[:8])
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed rule " + fe.Tag()
	}
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
