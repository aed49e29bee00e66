package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/citybot/core/config"
	coredatabase "github.com/m3rciful/citybot/core/database"
	"github.com/m3rciful/citybot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config
	// Database is optional; nil skips connection and migrations.
	Database *coredatabase.Config
	// DatabaseOptional keeps bootstrapping when the database cannot be
	// reached or migrated; modules then see a nil storage.
	DatabaseOptional bool
	Modules          Modules

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB       *sqlx.DB
	Services any
}

// Close releases the database handle, if any.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initializes the logger, optionally connects to the database and applies
// migrations, then runs the module seeders and the service provider.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if opts.Database != nil {
		db, err := openDatabase(opts)
		switch {
		case err == nil:
			res.DB = db
		case opts.DatabaseOptional:
			logger.DB.Warn("database unavailable, continuing without it",
				slog.String("event", "db.connect"),
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		default:
			return nil, err
		}
	}

	var storage Storage
	if res.DB != nil {
		storage = res.DB
	}
	for i, s := range opts.Modules.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Seed(ctx, storage); err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: seeder %d (%s) failed: %w", i, seederName(s), err)
		}
		logger.SEED.Info("seeder done",
			slog.String("event", "seed"),
			slog.String("seeder", seederName(s)),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	}

	if opts.Modules.Services != nil {
		svc, err := opts.Modules.Services.Provide(ctx, opts.Config, storage)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: services failed: %w", err)
		}
		res.Services = svc
	}

	return res, nil
}

func openDatabase(opts Options) (*sqlx.DB, error) {
	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(*opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(*opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	return db, nil
}
