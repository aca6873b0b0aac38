// Package idp wires command-line configuration into the identity provider.
package idp

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/louisbranch/corp-idp/internal/platform/otel"
	server "github.com/louisbranch/corp-idp/internal/services/idp/app"
)

// Config holds idp command configuration.
type Config struct {
	HTTPAddr string
	DBPath   string
}

// EnvLookup returns the value for a key when present.
type EnvLookup func(string) (string, bool)

// ParseConfig parses flags into a Config. Environment values provide the
// defaults; flags override them.
func ParseConfig(fs *flag.FlagSet, args []string, lookup EnvLookup) (Config, error) {
	cfg := Config{
		HTTPAddr: envOrDefault(lookup, []string{"CORP_IDP_HTTP_ADDR"}, "localhost:8085"),
		DBPath:   envOrDefault(lookup, []string{"CORP_IDP_DB_PATH"}, ""),
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The identity provider HTTP server address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the SQLite database file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the identity provider server.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "corp-idp")
	if err != nil {
		log.Printf("telemetry setup: %v", err)
	}
	if shutdown != nil {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("telemetry shutdown: %v", err)
			}
		}()
	}
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
