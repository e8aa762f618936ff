package repository

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
)

//go:embed fixtures/catalog.yaml
var defaultCatalog []byte

// Catalog is the seed data served by the backend
type Catalog struct {
	Restaurants []models.Restaurant `yaml:"restaurants"`
	Products    []models.Product    `yaml:"products"`
	Addresses   []models.Address    `yaml:"addresses"`
}

// LoadCatalog reads the catalog from path, or the built-in fixture when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and checks a YAML catalog
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	restaurants := make(map[int64]bool, len(c.Restaurants))
	for _, r := range c.Restaurants {
		if r.ID <= 0 {
			return fmt.Errorf("restaurant %q has no id", r.Name)
		}
		if restaurants[r.ID] {
			return fmt.Errorf("duplicate restaurant id %d", r.ID)
		}
		restaurants[r.ID] = true
	}

	products := make(map[int64]bool, len(c.Products))
	for _, p := range c.Products {
		if p.ID <= 0 {
			return fmt.Errorf("product %q has no id", p.Name)
		}
		if products[p.ID] {
			return fmt.Errorf("duplicate product id %d", p.ID)
		}
		if !restaurants[p.RestaurantID] {
			return fmt.Errorf("product %d references unknown restaurant %d", p.ID, p.RestaurantID)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("product %d has a negative price", p.ID)
		}
		products[p.ID] = true
	}

	addresses := make(map[int64]bool, len(c.Addresses))
	for _, a := range c.Addresses {
		if a.ID <= 0 || addresses[a.ID] {
			return fmt.Errorf("invalid or duplicate address id %d", a.ID)
		}
		addresses[a.ID] = true
	}
	return nil
}
