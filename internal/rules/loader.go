package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a single YAML rule pack.
func LoadFile(path string) (Pack, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Pack{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a YAML rule pack. The path is used in error messages only.
func Parse(path string, data []byte) (Pack, error) {
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return Pack{}, fmt.Errorf("%s: %w", path, err)
	}
	if pack.Name == "" {
		base := filepath.Base(path)
		pack.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	if len(pack.Rules) == 0 {
		return Pack{}, fmt.Errorf("%s: pack contains no rules", path)
	}
	return pack, nil
}

// LoadFiles reads every pack path in order.
func LoadFiles(paths []string) ([]Pack, error) {
	packs := make([]Pack, 0, len(paths))
	for _, path := range paths {
		pack, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}
	return packs, nil
}
