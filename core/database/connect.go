package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/citybot/core/logger"
)

const (
	driverName            = "postgres"
	defaultMaxConnections = 4
	connectTimeout        = 5 * time.Second
)

// Connect opens a pooled connection to Postgres and pings it. The handle is
// closed again if the ping fails.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool := cfg.MaxConnections
	if pool <= 0 {
		pool = defaultMaxConnections
	}

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed",
			append(cfg.logAttrs("db.connect", time.Since(start)), slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)

	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected",
		append(cfg.logAttrs("db.connect", time.Since(start)), slog.Int("pool_open", pool))...)
	return db, nil
}

func (c Config) logAttrs(event string, took time.Duration) []slog.Attr {
	return []slog.Attr{
		slog.String("event", event),
		slog.String("driver", driverName),
		slog.String("host", c.Host),
		slog.String("port", c.Port),
		slog.String("db", c.Name),
		slog.Duration("duration", logger.RoundMS(took)),
	}
}

// WaitForPostgres pings dsn with growing pauses until the server answers or
// timeout elapses. It covers containers that start alongside the database.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pause := 250 * time.Millisecond
	for {
		err := ping(ctx, dsn)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout reached waiting for database: %w", err)
		case <-time.After(pause):
		}
		pause = min(pause*2, 2*time.Second)
	}
}

func ping(ctx context.Context, dsn string) error {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}
