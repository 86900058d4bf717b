package config

import (
	"fmt"
	"os"

	"voyago/internal/models"

	"gopkg.in/yaml.v2"
)

// LoadProducts reads the excursion catalog. The file is operator-managed
// and reloaded on restart; it is the source of truth for product
// resolution during sync.
func LoadProducts(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var catalog struct {
		Products []models.Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse product catalog: %w", err)
	}

	if err := ValidateProducts(catalog.Products); err != nil {
		return nil, err
	}
	return catalog.Products, nil
}

func ValidateProducts(products []models.Product) error {
	seen := make(map[int64]bool)
	for _, p := range products {
		if p.ID == 0 {
			return fmt.Errorf("product %q has invalid ID 0", p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate product ID found: %d", p.ID)
		}
		seen[p.ID] = true
		if p.Capacity < 0 {
			return fmt.Errorf("product %d has negative capacity", p.ID)
		}
		if p.Price < 0 {
			return fmt.Errorf("product %d has negative price", p.ID)
		}
	}
	return nil
}
