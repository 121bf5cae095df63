package congress

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/ilus66/Cnol-2025-2/internal/platform/otel"
	server "github.com/ilus66/Cnol-2025-2/internal/services/congress/app"
)

// Config holds congress command configuration.
type Config struct {
	HTTPAddr string
	DBPath   string
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		HTTPAddr: envOrDefault(lookup, []string{"CNOL_HTTP_ADDR"}, "localhost:8090"),
		DBPath:   envOrDefault(lookup, []string{"CNOL_DB_PATH"}, "data/congress.db"),
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The congress HTTP server address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The congress SQLite database path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the congress server.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "congress")
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	return server.Run(ctx, cfg.HTTPAddr, cfg.DBPath)
}

func envOrDefault(lookup EnvLookup, keys []string, fallback string) string {
	for _, key := range keys {
		if lookup == nil {
			break
		}
		value, ok := lookup(key)
		if ok {
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}
