package citydata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/citybot/core/logger"
)

const (
	// SourceFile loads the catalog from JSON or YAML files.
	SourceFile = "file"
	// SourcePostgres loads the catalog from the cities tables.
	SourcePostgres = "postgres"

	DefaultCitiesPath = "data/cities_data.json"
	DefaultSightsPath = "data/sights_descriptions.json"
)

// Config selects and locates the catalog source.
type Config struct {
	Source     string `yaml:"source" envconfig:"DATA_SOURCE"`
	CitiesPath string `yaml:"cities_path" envconfig:"DATA_CITIES_PATH"`
	SightsPath string `yaml:"sights_path" envconfig:"DATA_SIGHTS_PATH"`
	// Seed copies the file catalog into postgres on startup.
	Seed bool `yaml:"seed" envconfig:"DATA_SEED"`
}

// Normalize fills defaults and rejects unknown sources.
func (c *Config) Normalize() error {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	if c.Source == "" {
		c.Source = SourceFile
	}
	if strings.TrimSpace(c.CitiesPath) == "" {
		c.CitiesPath = DefaultCitiesPath
	}
	if strings.TrimSpace(c.SightsPath) == "" {
		c.SightsPath = DefaultSightsPath
	}
	switch c.Source {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("invalid data.source %q; allowed: file, postgres", c.Source)
	}
	return nil
}

// NeedsDatabase reports whether the configured source or seeding uses postgres.
func (c Config) NeedsDatabase() bool {
	return c.Source == SourcePostgres || c.Seed
}

// Files returns the file source described by the config.
func (c Config) Files() FileSource {
	return FileSource{CitiesPath: c.CitiesPath, SightsPath: c.SightsPath}
}

// Open loads the catalog from the configured source. Load failures never
// propagate: the cause is logged and an empty, degraded provider is returned.
func Open(ctx context.Context, cfg Config, db *sqlx.DB, opts ...Option) *Provider {
	start := time.Now()
	source := cfg.Source
	if source == "" {
		source = SourceFile
	}

	var (
		cat Catalog
		err error
	)
	switch source {
	case SourcePostgres:
		cat, err = LoadPostgres(ctx, db)
	case SourceFile:
		cat, err = LoadFiles(ctx, cfg.Files())
	default:
		err = fmt.Errorf("citydata: unknown source %q", source)
	}

	if err != nil {
		logger.Catalog.Warn("catalog unavailable, serving empty tables",
			slog.String("event", "catalog.load"),
			slog.String("status", "fail"),
			slog.String("source", source),
			slog.Bool("degraded", true),
			slog.String("err", err.Error()),
		)
		p := NewProvider(Catalog{}, opts...)
		p.degraded = true
		return p
	}

	logger.Catalog.Info("catalog loaded",
		slog.String("event", "catalog.load"),
		slog.String("status", "ok"),
		slog.String("source", source),
		slog.Int("cities", cat.Len()),
		slog.Int("sights", cat.SightCount()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return NewProvider(cat, opts...)
}
