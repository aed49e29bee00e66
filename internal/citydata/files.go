package citydata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileSource names the two catalog files. The format is chosen by extension:
// .json, .yaml or .yml.
type FileSource struct {
	CitiesPath string
	SightsPath string
}

// LoadFiles reads and validates both tables from disk.
func LoadFiles(ctx context.Context, src FileSource) (Catalog, error) {
	var cities map[string]City
	if err := decodeFile(ctx, src.CitiesPath, &cities); err != nil {
		return Catalog{}, err
	}
	var sights map[string]map[string]SightDescription
	if err := decodeFile(ctx, src.SightsPath, &sights); err != nil {
		return Catalog{}, err
	}
	return BuildCatalog(cities, sights)
}

func decodeFile(ctx context.Context, path string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("citydata: empty file path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("citydata: read %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
	default:
		return fmt.Errorf("citydata: unsupported file extension %q for %s", ext, path)
	}
	return nil
}
