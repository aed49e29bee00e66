package citydata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/citybot/core/bootstrap"
	"github.com/m3rciful/citybot/core/logger"
)

// Data columns are jsonb; they travel as text because lib/pq would send a
// []byte as bytea.
type cityRow struct {
	Key  string `db:"key"`
	Data string `db:"data"`
}

type sightRow struct {
	City  string `db:"city"`
	Sight string `db:"sight"`
	Data  string `db:"data"`
}

// LoadPostgres reads both tables created by the catalog migrations.
func LoadPostgres(ctx context.Context, db *sqlx.DB) (Catalog, error) {
	if db == nil {
		return Catalog{}, fmt.Errorf("citydata: nil database")
	}

	var cityRows []cityRow
	if err := db.SelectContext(ctx, &cityRows, `SELECT key, data FROM cities ORDER BY key`); err != nil {
		return Catalog{}, fmt.Errorf("citydata: select cities: %w", err)
	}
	cities := make(map[string]City, len(cityRows))
	for _, row := range cityRows {
		var c City
		if err := json.Unmarshal([]byte(row.Data), &c); err != nil {
			return Catalog{}, fmt.Errorf("%w: city %q: %v", ErrMalformed, row.Key, err)
		}
		cities[row.Key] = c
	}

	var sightRows []sightRow
	if err := db.SelectContext(ctx, &sightRows, `SELECT city, sight, data FROM sight_descriptions ORDER BY city, sight`); err != nil {
		return Catalog{}, fmt.Errorf("citydata: select sight_descriptions: %w", err)
	}
	sights := make(map[string]map[string]SightDescription)
	for _, row := range sightRows {
		var d SightDescription
		if err := json.Unmarshal([]byte(row.Data), &d); err != nil {
			return Catalog{}, fmt.Errorf("%w: sight %q/%q: %v", ErrMalformed, row.City, row.Sight, err)
		}
		if sights[row.City] == nil {
			sights[row.City] = make(map[string]SightDescription)
		}
		sights[row.City][row.Sight] = d
	}

	return BuildCatalog(cities, sights)
}

const (
	upsertCity = `INSERT INTO cities (key, data) VALUES (:key, :data)
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	upsertSight = `INSERT INTO sight_descriptions (city, sight, data) VALUES (:city, :sight, :data)
ON CONFLICT (city, sight) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
)

// Seed upserts catalog into postgres in a single transaction.
func Seed(ctx context.Context, db *sqlx.DB, catalog Catalog) error {
	if db == nil {
		return fmt.Errorf("citydata: nil database")
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("citydata: begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range sortedKeys(catalog.Cities) {
		data, err := json.Marshal(catalog.Cities[key])
		if err != nil {
			return fmt.Errorf("citydata: encode city %q: %w", key, err)
		}
		if _, err := tx.NamedExecContext(ctx, upsertCity, cityRow{Key: key, Data: string(data)}); err != nil {
			return fmt.Errorf("citydata: upsert city %q: %w", key, err)
		}
	}
	for _, city := range sortedKeys(catalog.Sights) {
		descs := catalog.Sights[city]
		for _, name := range sortedKeys(descs) {
			data, err := json.Marshal(descs[name])
			if err != nil {
				return fmt.Errorf("citydata: encode sight %q/%q: %w", city, name, err)
			}
			row := sightRow{City: city, Sight: name, Data: string(data)}
			if _, err := tx.NamedExecContext(ctx, upsertSight, row); err != nil {
				return fmt.Errorf("citydata: upsert sight %q/%q: %w", city, name, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("citydata: commit seed: %w", err)
	}
	return nil
}

// FileSeeder copies the file catalog into postgres during bootstrap. Without
// a database it logs and does nothing.
func FileSeeder(src FileSource) bootstrap.Seeder {
	return bootstrap.NamedSeeder("citydata.files", func(ctx context.Context, storage bootstrap.Storage) error {
		db, ok := storage.(*sqlx.DB)
		if !ok || db == nil {
			logger.SEED.Warn("no database, catalog seeding skipped",
				slog.String("event", "db.seed"),
				slog.String("status", "skip"),
			)
			return nil
		}
		cat, err := LoadFiles(ctx, src)
		if err != nil {
			return err
		}
		if err := Seed(ctx, db, cat); err != nil {
			return err
		}
		logger.SEED.Info("catalog seeded",
			slog.String("event", "db.seed"),
			slog.String("status", "ok"),
			slog.Int("cities", cat.Len()),
			slog.Int("sights", cat.SightCount()),
		)
		return nil
	})
}
