package main

import (
	"context"
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	corecmd "github.com/m3rciful/citybot/core/cmd"
	"github.com/m3rciful/citybot/internal/app"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: corecmd.DefaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				return nil, errors.New("unexpected config type")
			}
			return app.Bootstrap(ctx, appCfg, app.BootstrapOptions{})
		},
	})
	if err != nil {
		log.Fatalf("citybot: %v", err)
	}
}
