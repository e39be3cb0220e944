package labelspec

import (
	"encoding/json"
	"fmt"
	"os"
)

// Parse parses a .labels catalog from a byte slice
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse label catalog: %w", err)
	}

	if err := Validate(&catalog); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// ParseFile parses a .labels catalog from disk
func ParseFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label catalog: %w", err)
	}

	return Parse(data)
}

// ToJSON converts a Catalog to JSON bytes
func (c *Catalog) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// SaveToFile saves a Catalog to a file
func (c *Catalog) SaveToFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
