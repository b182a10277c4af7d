package domain

import (
	"sort"
	"strings"
)

// DefaultDensityKgM3 is used for compositions missing from the density table.
const DefaultDensityKgM3 = 3000.0

// Composition pairs a composition name with its bulk density.
type Composition struct {
	Name        string  `json:"name"`
	DensityKgM3 float64 `json:"density_kg_m3"`
}

// DensityTable maps composition names to bulk densities in kg/m^3.
// Lookups are case-insensitive and ignore surrounding whitespace.
type DensityTable struct {
	densities map[string]float64
	fallback  float64
}

// NewDensityTable builds a table from densities, answering unknown names
// with fallback.
func NewDensityTable(densities map[string]float64, fallback float64) DensityTable {
	t := DensityTable{
		densities: make(map[string]float64, len(densities)),
		fallback:  fallback,
	}
	for name, d := range densities {
		t.densities[normalizeComposition(name)] = d
	}
	return t
}

// DefaultDensityTable returns the built-in composition densities.
func DefaultDensityTable() DensityTable {
	return NewDensityTable(map[string]float64{
		"stone":          3000,
		"stony":          3000,
		"iron":           8000,
		"comet":          1000,
		"stony-metallic": 5000,
		"stony-iron":     5000,
		"carbonaceous":   1400,
	}, DefaultDensityKgM3)
}

// Resolve returns the density for name and whether name was in the table.
// Unknown names resolve to the fallback density.
func (t DensityTable) Resolve(name string) (float64, bool) {
	if d, ok := t.densities[normalizeComposition(name)]; ok {
		return d, true
	}
	return t.fallback, false
}

// Fallback returns the density used for unknown compositions.
func (t DensityTable) Fallback() float64 {
	return t.fallback
}

// Compositions lists the table entries sorted by name.
func (t DensityTable) Compositions() []Composition {
	out := make([]Composition, 0, len(t.densities))
	for name, d := range t.densities {
		out = append(out, Composition{Name: name, DensityKgM3: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizeComposition(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
