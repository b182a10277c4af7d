package domain

import (
	"context"
	"strings"
)

// AsteroidPreset is a display record for a known near-Earth object. Presets
// only seed the input form; the calculator never reads them.
type AsteroidPreset struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	ShortName   string  `json:"short_name" yaml:"short_name"`
	DiameterKm  float64 `json:"diameter_km" yaml:"diameter_km"`
	VelocityKmS float64 `json:"typical_velocity_km_s" yaml:"typical_velocity_km_s"`
	Description string  `json:"description" yaml:"description"`
	Composition string  `json:"composition" yaml:"composition"`
}

// Scenario returns the impact request a preset pre-fills.
func (p AsteroidPreset) Scenario() Scenario {
	d, v := p.DiameterKm, p.VelocityKmS
	return Scenario{
		ID:          p.ID,
		DiameterKm:  &d,
		VelocityKmS: &v,
		Composition: p.Composition,
	}
}

// Gallery sources.
const (
	GallerySourceNeoWs  = "neows"
	GallerySourceStatic = "static"
)

// GalleryPage is the list of presets offered to users and where it came from.
type GalleryPage struct {
	Asteroids []AsteroidPreset `json:"asteroids"`
	Source    string           `json:"source"`
}

// Gallery supplies the asteroid presets offered to users.
type Gallery interface {
	Gallery(ctx context.Context) (GalleryPage, error)
}

// NEOSource looks up a single near-Earth object by its catalog id.
type NEOSource interface {
	LookupNEO(ctx context.Context, id string) (AsteroidPreset, error)
}

// StaticGallery serves a fixed list of presets.
type StaticGallery []AsteroidPreset

// Gallery returns a copy of the preset list.
func (g StaticGallery) Gallery(_ context.Context) (GalleryPage, error) {
	out := make([]AsteroidPreset, len(g))
	copy(out, g)
	return GalleryPage{Asteroids: out, Source: GallerySourceStatic}, nil
}

// ShortName trims the provisional designation from an NEO name,
// e.g. "433 Eros (A898 PA)" -> "433 Eros".
func ShortName(name string) string {
	short, _, _ := strings.Cut(name, "(")
	return strings.TrimSpace(short)
}
