package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// maxPresets bounds the curated gallery; each preset costs one NeoWs request.
const maxPresets = 50

// Catalog holds the tables that parameterize the calculator and the gallery:
// composition densities, the damage policy and the curated asteroid presets.
type Catalog struct {
	Densities          map[string]float64      `yaml:"densities"`
	DefaultDensityKgM3 float64                 `yaml:"default_density_kg_m3"`
	DamagePolicy       domain.DamagePolicy     `yaml:"damage_policy"`
	Presets            []domain.AsteroidPreset `yaml:"presets"`
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog from path, or returns the embedded catalog when
// path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for i := range c.Presets {
		if c.Presets[i].ShortName == "" {
			c.Presets[i].ShortName = domain.ShortName(c.Presets[i].Name)
		}
	}
	return &c, nil
}

// Validate rejects catalogs the calculator cannot run with.
func (c *Catalog) Validate() error {
	if len(c.Densities) == 0 {
		return errors.New("densities: at least one composition is required")
	}
	for name, d := range c.Densities {
		if d <= 0 {
			return fmt.Errorf("densities: %q must be positive", name)
		}
	}
	if c.DefaultDensityKgM3 <= 0 {
		return errors.New("default_density_kg_m3 must be positive")
	}
	if err := c.DamagePolicy.Validate(); err != nil {
		return err
	}
	if len(c.Presets) > maxPresets {
		return fmt.Errorf("presets: too many entries: %d (max %d)", len(c.Presets), maxPresets)
	}
	seen := make(map[string]bool, len(c.Presets))
	for i, p := range c.Presets {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("presets: entry %d: id and name are required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("presets: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
		if p.DiameterKm <= 0 || p.VelocityKmS <= 0 {
			return fmt.Errorf("presets: %q: diameter and velocity must be positive", p.ID)
		}
	}
	return nil
}

// DensityTable builds the composition lookup described by the catalog.
func (c *Catalog) DensityTable() domain.DensityTable {
	return domain.NewDensityTable(c.Densities, c.DefaultDensityKgM3)
}

// Calculator builds a calculator using the catalog's damage policy.
func (c *Catalog) Calculator() (*domain.Calculator, error) {
	return domain.NewCalculator(c.DamagePolicy)
}

// PresetIDs returns the curated NEO ids in catalog order.
func (c *Catalog) PresetIDs() []string {
	ids := make([]string, len(c.Presets))
	for i, p := range c.Presets {
		ids[i] = p.ID
	}
	return ids
}
