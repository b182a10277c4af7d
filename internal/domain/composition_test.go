package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDensityTable_Resolve(t *testing.T) {
	table := DefaultDensityTable()

	tests := []struct {
		name        string
		composition string
		density     float64
		known       bool
	}{
		{"stony", "stony", 3000, true},
		{"iron", "iron", 8000, true},
		{"comet", "comet", 1000, true},
		{"carbonaceous", "carbonaceous", 1400, true},
		{"case insensitive", "Stony-Metallic", 5000, true},
		{"surrounding whitespace", "  iron ", 8000, true},
		{"unknown falls back", "antimatter", DefaultDensityKgM3, false},
		{"empty falls back", "", DefaultDensityKgM3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			density, known := table.Resolve(tt.composition)
			assert.Equal(t, tt.density, density)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestDensityTable_CustomFallback(t *testing.T) {
	table := NewDensityTable(map[string]float64{"Ice": 917}, 2000)

	d, ok := table.Resolve("ice")
	assert.True(t, ok)
	assert.Equal(t, 917.0, d)

	d, ok = table.Resolve("stony")
	assert.False(t, ok)
	assert.Equal(t, 2000.0, d)
	assert.Equal(t, 2000.0, table.Fallback())
}

func TestDensityTable_CompositionsSorted(t *testing.T) {
	comps := DefaultDensityTable().Compositions()
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"carbonaceous", "comet", "iron", "stone", "stony", "stony-iron", "stony-metallic"}, names)
}
