package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/config"
	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/metrics/prometheus"
	"github.com/Veraticus/rupee-flow/internal/storage"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration. Check your config file and RUPEE_* environment variables.", err)
	}
	return settings, nil
}

// openStore opens the configured database and brings its schema up to date.
func openStore(ctx context.Context, settings *config.Settings) (*storage.Store, error) {
	store, err := storage.Open(ctx, storage.Config{
		Driver: settings.Database.Driver,
		DSN:    settings.Database.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Debug("Opened database", "driver", store.Driver())
	return store, nil
}

// newCollector returns a Prometheus collector registered on a fresh
// registry, or a no-op collector when metrics are disabled.
func newCollector(settings *config.Settings) (metrics.Collector, *promclient.Registry, error) {
	if !settings.Metrics.Enabled {
		return metrics.NoOpCollector{}, nil, nil
	}
	registry := promclient.NewRegistry()
	collector := prometheus.NewCollector(settings.Metrics.Namespace)
	if err := collector.Register(registry); err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	return collector, registry, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
