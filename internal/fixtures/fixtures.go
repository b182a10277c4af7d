// Package fixtures generates and checks pinned impact regression fixtures.
// A fixture records a scenario together with the report the calculator
// produced for it, so later builds can detect numerical drift.
package fixtures

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
)

// GeneratedAt is the fixed clock reading stamped on generated reports.
var GeneratedAt = time.Date(2029, time.April, 13, 21, 46, 0, 0, time.UTC)

// DefaultTolerance is the relative tolerance used when comparing floats.
const DefaultTolerance = 1e-9

// Fixture is one pinned scenario and its expected report.
type Fixture struct {
	Name     string              `json:"name"`
	Scenario domain.Scenario     `json:"scenario"`
	Report   domain.ImpactReport `json:"report"`
}

// File is the on-disk fixture set.
type File struct {
	GeneratedAt time.Time `json:"generated_at"`
	Fixtures    []Fixture `json:"fixtures"`
}

// ReferenceScenario is the canonical 1 km stony impactor at 20 km/s, 45 degrees.
func ReferenceScenario() domain.Scenario {
	d, v, a := domain.DefaultDiameterKm, domain.DefaultVelocityKmS, domain.DefaultAngleDegrees
	return domain.Scenario{DiameterKm: &d, VelocityKmS: &v, AngleDegrees: &a, Composition: domain.DefaultComposition}
}

// Generate computes fixtures for the reference scenario and every preset.
// Reports are stamped by the domain clock; callers pin it with
// domain.SetClock for reproducible output.
func Generate(calc *domain.Calculator, table domain.DensityTable, presets []domain.AsteroidPreset) (File, error) {
	type namedScenario struct {
		name     string
		scenario domain.Scenario
	}
	named := []namedScenario{{name: "reference", scenario: ReferenceScenario()}}
	for _, p := range presets {
		named = append(named, namedScenario{name: fixtureName(p), scenario: p.Scenario()})
	}

	file := File{GeneratedAt: GeneratedAt, Fixtures: make([]Fixture, 0, len(named))}
	for _, n := range named {
		report, err := Recompute(n.scenario, calc, table)
		if err != nil {
			return File{}, fmt.Errorf("fixture %s: %w", n.name, err)
		}
		file.Fixtures = append(file.Fixtures, Fixture{Name: n.name, Scenario: n.scenario, Report: report})
	}
	return file, nil
}

// Recompute runs a scenario through validation, resolution and the calculator.
func Recompute(s domain.Scenario, calc *domain.Calculator, table domain.DensityTable) (domain.ImpactReport, error) {
	if err := s.Validate(); err != nil {
		return domain.ImpactReport{}, err
	}
	in, composition := s.Resolve(table)
	res, err := calc.Compute(in)
	if err != nil {
		return domain.ImpactReport{}, err
	}
	return domain.BuildReport(s, composition, in, res), nil
}

// Compare lists every difference between two reports, ignoring ComputedAt.
// Floats are compared with relative tolerance tol.
func Compare(want, got domain.ImpactReport, tol float64) []string {
	var diffs []string
	str := func(field, w, g string) {
		if w != g {
			diffs = append(diffs, fmt.Sprintf("%s: want %q, got %q", field, w, g))
		}
	}
	num := func(field string, w, g float64) {
		if !approxEqual(w, g, tol) {
			diffs = append(diffs, fmt.Sprintf("%s: want %.12g, got %.12g", field, w, g))
		}
	}

	str("scenario_id", want.ScenarioID, got.ScenarioID)
	str("composition", want.Composition, got.Composition)
	num("input.diameter_km", want.Input.DiameterKm, got.Input.DiameterKm)
	num("input.velocity_km_s", want.Input.VelocityKmS, got.Input.VelocityKmS)
	num("input.angle_degrees", want.Input.AngleDegrees, got.Input.AngleDegrees)
	num("input.density_kg_m3", want.Input.DensityKgM3, got.Input.DensityKgM3)

	w, g := want.Result, got.Result
	num("calculated_energy_megatons_tnt", w.EnergyMegatonsTNT, g.EnergyMegatonsTNT)
	num("estimated_crater_diameter_km", w.CraterDiameterKm, g.CraterDiameterKm)
	num("estimated_equivalent_magnitude", w.EquivalentMagnitude, g.EquivalentMagnitude)
	str("damage_level", string(w.DamageLevel), string(g.DamageLevel))
	str("damage_description", w.DamageDescription, g.DamageDescription)
	num("mass_kg", w.MassKg, g.MassKg)
	num("kinetic_energy_joules", w.KineticEnergyJoules, g.KineticEnergyJoules)
	num("effective_energy_joules", w.EffectiveEnergyJoules, g.EffectiveEnergyJoules)
	num("atmospheric_efficiency", w.AtmosphericEfficiency, g.AtmosphericEfficiency)
	num("angle_efficiency", w.AngleEfficiency, g.AngleEfficiency)
	return diffs
}

// Load reads a fixture file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read fixtures: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return f, nil
}

// Write stores a fixture file as indented JSON, creating parent directories.
func Write(path string, f File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func approxEqual(want, got, tol float64) bool {
	if want == got {
		return true
	}
	scale := math.Max(math.Abs(want), math.Abs(got))
	return math.Abs(want-got) <= tol*scale
}

func fixtureName(p domain.AsteroidPreset) string {
	if p.ShortName != "" {
		return p.ShortName
	}
	return p.ID
}
