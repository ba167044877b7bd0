package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"devis/internal/pricing"
)

// LoadCatalog reads a pricing catalog from a YAML file. An empty path yields
// the built-in catalog.
func LoadCatalog(path string) (*pricing.Catalog, error) {
	if path == "" {
		return pricing.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var catalog pricing.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if catalog.Currency == "" {
		catalog.Currency = "EUR"
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return &catalog, nil
}
