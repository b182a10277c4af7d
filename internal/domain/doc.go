// Package domain models asteroid impacts and the physics used to estimate
// their consequences.
//
// # Inputs
//
// An impact is described by four values:
//
//	diameter_km     bulk diameter of the impactor, assumed spherical
//	velocity_km_s   speed at atmospheric entry
//	angle_degrees   entry angle above the horizon, in (0, 90]; 90 is vertical
//	density_kg_m3   bulk density, either explicit or resolved from a composition
//
// Composition names ("stony", "iron", "comet", ...) map to densities through a
// [DensityTable]. Unknown names resolve to [DefaultDensityKgM3].
//
// # Scaling Laws
//
// Mass comes from the sphere volume and density; kinetic energy is 1/2 m v^2.
// Two efficiency factors reduce the energy that reaches the ground:
//
//	atmospheric   0.95 above 1 km diameter, 0.70 + 0.25*d at or below
//	angle         sin(angle); a vertical impact keeps all of it
//
// The scaled energy E drives every derived metric:
//
//	megatons   E / 4.184e15
//	crater     1.161 * (2700/rho)^(-1/3) * (E/9.81)^(1/3.4) / 1000   [km]
//	magnitude  (2/3) * log10(E) - 2.9
//
// The magnitude is a seismic-equivalent figure, not a seismometer reading, and
// goes negative for very small impacts. A non-positive E yields zeros.
//
// # Damage Classification
//
// Energy in megatons is mapped to a damage class by a [DamagePolicy], an
// ordered table with inclusive lower bounds:
//
//	>= 100000 Mt   catastrophic
//	>= 100 Mt      regional
//	>= 10 Mt       city
//	>= 1 Mt        local
//	below          minimal
//
// The table is configuration, not physics. The service loads it from the
// catalog so alternate boundaries can be tested in isolation.
//
// # Determinism
//
// [Calculator.Compute] is a pure function of its input and policy. It reads no
// clock and no randomness, so the same input always yields a bit-identical
// result. Report timestamps are added afterwards by [BuildReport].
package domain
