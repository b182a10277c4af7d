package domain

import (
	"errors"
	"fmt"
	"math"
)

// DamageLevel is a qualitative severity class for an impact.
type DamageLevel string

const (
	DamageCatastrophic DamageLevel = "catastrophic"
	DamageRegional     DamageLevel = "regional"
	DamageCity         DamageLevel = "city"
	DamageLocal        DamageLevel = "local"
	DamageMinimal      DamageLevel = "minimal"
)

// DamageThreshold assigns Level to any impact releasing at least MinMegatons.
type DamageThreshold struct {
	Level       DamageLevel `json:"level" yaml:"level"`
	MinMegatons float64     `json:"min_megatons" yaml:"min_megatons"`
	Description string      `json:"description" yaml:"description"`
}

// DamagePolicy is the ordered partition of impact energy into damage classes.
// Thresholds are sorted by strictly descending MinMegatons; energies below the
// last threshold fall into Fallback.
type DamagePolicy struct {
	Thresholds []DamageThreshold `json:"thresholds" yaml:"thresholds"`
	Fallback   DamageThreshold   `json:"fallback" yaml:"fallback"`
}

// DefaultDamagePolicy returns the standard five-class severity table.
func DefaultDamagePolicy() DamagePolicy {
	return DamagePolicy{
		Thresholds: []DamageThreshold{
			{Level: DamageCatastrophic, MinMegatons: 100000, Description: "Global catastrophe - potential mass extinction event."},
			{Level: DamageRegional, MinMegatons: 100, Description: "Regional devastation with potential climate effects."},
			{Level: DamageCity, MinMegatons: 10, Description: "City-scale destruction; an entire major city would be obliterated."},
			{Level: DamageLocal, MinMegatons: 1, Description: "Local devastation."},
		},
		Fallback: DamageThreshold{Level: DamageMinimal, Description: "Minimal local effects."},
	}
}

// Classify returns the first threshold whose lower bound megatons reaches,
// or the fallback when none does.
func (p DamagePolicy) Classify(megatons float64) DamageThreshold {
	for _, t := range p.Thresholds {
		if megatons >= t.MinMegatons {
			return t
		}
	}
	return p.Fallback
}

// Rank returns the severity rank of level: 0 for the fallback class, rising
// by one per threshold toward the most severe. Unknown levels return -1.
func (p DamagePolicy) Rank(level DamageLevel) int {
	if level == p.Fallback.Level {
		return 0
	}
	for i, t := range p.Thresholds {
		if t.Level == level {
			return len(p.Thresholds) - i
		}
	}
	return -1
}

// Validate checks that the thresholds form a non-overlapping partition.
func (p DamagePolicy) Validate() error {
	if len(p.Thresholds) == 0 {
		return errors.New("damage policy: at least one threshold is required")
	}
	if p.Fallback.Level == "" || p.Fallback.Description == "" {
		return errors.New("damage policy: fallback level and description are required")
	}

	seen := map[DamageLevel]bool{p.Fallback.Level: true}
	prev := math.Inf(1)
	for i, t := range p.Thresholds {
		if t.Level == "" || t.Description == "" {
			return fmt.Errorf("damage policy: threshold %d: level and description are required", i)
		}
		if seen[t.Level] {
			return fmt.Errorf("damage policy: duplicate level %q", t.Level)
		}
		seen[t.Level] = true

		if math.IsNaN(t.MinMegatons) || math.IsInf(t.MinMegatons, 0) || t.MinMegatons <= 0 {
			return fmt.Errorf("damage policy: threshold %q: min_megatons must be positive and finite", t.Level)
		}
		if t.MinMegatons >= prev {
			return fmt.Errorf("damage policy: threshold %q: min_megatons must be strictly descending", t.Level)
		}
		prev = t.MinMegatons
	}
	return nil
}
