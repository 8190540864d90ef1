// Package server parses API server flags and launches the service.
package server

import (
	"context"
	"flag"

	"github.com/louisbranch/taskhub/internal/app"
	"github.com/louisbranch/taskhub/internal/auth"
	entrypoint "github.com/louisbranch/taskhub/internal/platform/cmd"
)

// Config holds API server command configuration.
type Config struct {
	Addr   string `env:"TASKHUB_HTTP_ADDR" envDefault:":8080"`
	DBPath string `env:"TASKHUB_DB_PATH" envDefault:"data/tasks.db"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the taskhub API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		tokens, err := auth.LoadTokenConfigFromEnv(nil)
		if err != nil {
			return err
		}
		return app.Run(ctx, app.Config{
			Addr:   cfg.Addr,
			DBPath: cfg.DBPath,
			Tokens: tokens,
		})
	})
}
