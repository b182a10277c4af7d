package domain

import (
	"math"
)

// Physical constants used by the impact scaling laws.
const (
	// JoulesPerMegaton is the energy released by one megaton of TNT.
	JoulesPerMegaton = 4.184e15

	// StandardGravity is surface gravity in m/s^2, used by the crater scaling law.
	StandardGravity = 9.81

	// ReferenceTargetDensity is the density (kg/m^3) of the crustal rock the
	// crater scaling law is calibrated against.
	ReferenceTargetDensity = 2700.0

	craterCoefficient = 1.161
	craterExponent    = 1 / 3.4

	// Bodies larger than this keep most of their energy through the atmosphere.
	atmosphericCutoffKm  = 1.0
	atmosphericMaxFactor = 0.95
	atmosphericMinFactor = 0.70
	atmosphericSlope     = 0.25
)

// ImpactInput is the validated physical description of an impactor.
type ImpactInput struct {
	DiameterKm   float64 `json:"diameter_km"`
	VelocityKmS  float64 `json:"velocity_km_s"`
	AngleDegrees float64 `json:"angle_degrees"`
	DensityKgM3  float64 `json:"density_kg_m3"`
}

// ImpactResult holds the derived impact metrics. The first five fields form
// the public API response; the rest are intermediates kept for inspection.
type ImpactResult struct {
	EnergyMegatonsTNT   float64     `json:"calculated_energy_megatons_tnt"`
	CraterDiameterKm    float64     `json:"estimated_crater_diameter_km"`
	EquivalentMagnitude float64     `json:"estimated_equivalent_magnitude"`
	DamageLevel         DamageLevel `json:"damage_level"`
	DamageDescription   string      `json:"damage_description"`

	MassKg                float64 `json:"mass_kg"`
	KineticEnergyJoules   float64 `json:"kinetic_energy_joules"`
	EffectiveEnergyJoules float64 `json:"effective_energy_joules"`
	AtmosphericEfficiency float64 `json:"atmospheric_efficiency"`
	AngleEfficiency       float64 `json:"angle_efficiency"`
}

// Calculator converts impact inputs into impact metrics using a fixed damage
// policy. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	policy DamagePolicy
}

// NewCalculator creates a Calculator that classifies damage with policy.
// The policy is validated so classification can never fall through.
func NewCalculator(policy DamagePolicy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{policy: policy}, nil
}

// Policy returns the damage policy used for classification.
func (c *Calculator) Policy() DamagePolicy {
	return c.policy
}

var defaultCalculator = &Calculator{policy: DefaultDamagePolicy()}

// Compute runs the impact calculation with the default damage policy.
func Compute(in ImpactInput) (ImpactResult, error) {
	return defaultCalculator.Compute(in)
}

// Compute estimates energy, crater size, seismic-equivalent magnitude and
// damage class for a single impact.
//
// Energy is scaled by an atmospheric-entry efficiency (0.95 above 1 km,
// linear from 0.70 toward 0.95 below) and by sin(angle) for oblique entry.
// The crater follows 1.161*(2700/rho)^(-1/3)*(E/g)^(1/3.4) and the magnitude
// (2/3)*log10(E)-2.9, both on the scaled energy in joules.
func (c *Calculator) Compute(in ImpactInput) (ImpactResult, error) {
	if err := in.Validate(); err != nil {
		return ImpactResult{}, err
	}

	diameterM := in.DiameterKm * 1000.0
	velocityMS := in.VelocityKmS * 1000.0
	angleRad := in.AngleDegrees * math.Pi / 180.0

	mass := (4.0 / 3.0) * math.Pi * math.Pow(diameterM/2.0, 3) * in.DensityKgM3
	kinetic := 0.5 * mass * velocityMS * velocityMS

	atmospheric := atmosphericEfficiency(in.DiameterKm)
	angle := math.Sin(angleRad)
	effective := kinetic * atmospheric * angle

	res := ImpactResult{
		MassKg:                mass,
		KineticEnergyJoules:   kinetic,
		EffectiveEnergyJoules: effective,
		AtmosphericEfficiency: atmospheric,
		AngleEfficiency:       angle,
	}

	if effective > 0 {
		res.EnergyMegatonsTNT = effective / JoulesPerMegaton
		res.CraterDiameterKm = craterCoefficient *
			math.Pow(ReferenceTargetDensity/in.DensityKgM3, -1.0/3.0) *
			math.Pow(effective/StandardGravity, craterExponent) / 1000.0
		res.EquivalentMagnitude = (2.0/3.0)*math.Log10(effective) - 2.9
	} else {
		res.EffectiveEnergyJoules = 0
	}

	if !allFinite(res.MassKg, res.KineticEnergyJoules, res.EffectiveEnergyJoules,
		res.EnergyMegatonsTNT, res.CraterDiameterKm, res.EquivalentMagnitude) {
		return ImpactResult{}, &InvalidInputError{Reason: "inputs produce a non-finite impact energy"}
	}

	threshold := c.policy.Classify(res.EnergyMegatonsTNT)
	res.DamageLevel = threshold.Level
	res.DamageDescription = threshold.Description
	return res, nil
}

// Validate checks the calculator preconditions: positive finite diameter,
// velocity and density, and an entry angle in (0, 90] degrees.
func (in ImpactInput) Validate() error {
	switch {
	case !isPositive(in.DiameterKm):
		return newInvalidInput("diameter_km", in.DiameterKm, "must be a positive finite number")
	case !isPositive(in.VelocityKmS):
		return newInvalidInput("velocity_km_s", in.VelocityKmS, "must be a positive finite number")
	case !isPositive(in.DensityKgM3):
		return newInvalidInput("density_kg_m3", in.DensityKgM3, "must be a positive finite number")
	case !isPositive(in.AngleDegrees) || in.AngleDegrees > 90:
		return newInvalidInput("angle_degrees", in.AngleDegrees, "must be greater than 0 and at most 90")
	}
	return nil
}

// atmosphericEfficiency is the fraction of kinetic energy delivered to the
// ground after atmospheric entry.
func atmosphericEfficiency(diameterKm float64) float64 {
	if diameterKm > atmosphericCutoffKm {
		return atmosphericMaxFactor
	}
	return atmosphericMinFactor + atmosphericSlope*(diameterKm/atmosphericCutoffKm)
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
