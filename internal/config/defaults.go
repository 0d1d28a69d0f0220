package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"turbo-export/internal/core/domain"
)

// LoadDefaultsFile reads request defaults from a YAML (.yaml, .yml) or JSON
// (.json) file. An empty path yields empty defaults.
func LoadDefaultsFile(path string) (domain.ExportDefaults, error) {
	var defaults domain.ExportDefaults
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("failed to read defaults file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&defaults); err != nil {
			return domain.ExportDefaults{}, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
		}
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&defaults); err != nil {
			return domain.ExportDefaults{}, fmt.Errorf("failed to parse defaults file %s: %w", path, err)
		}
	default:
		return defaults, fmt.Errorf("unsupported defaults file extension: %s", filepath.Ext(path))
	}

	if err := defaults.Validate(); err != nil {
		return domain.ExportDefaults{}, fmt.Errorf("invalid defaults file %s: %w", path, err)
	}
	return defaults, nil
}
