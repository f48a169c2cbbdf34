package main

import (
	"net/http"

	"github.com/Veraticus/rupee-flow/internal/api"
	"github.com/Veraticus/rupee-flow/internal/extract"
	"github.com/Veraticus/rupee-flow/internal/processing"
	"github.com/Veraticus/rupee-flow/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction API over HTTP",
		Long: `Start the HTTP API. Endpoints:

  POST /api/extract             extract one message
  POST /api/extract/batch       extract several messages
  POST /api/messages            store raw messages
  POST /api/process-batch       process unprocessed messages
  POST /api/auto-process        process up to 1000 messages
  POST /api/process-message     process one stored message
  GET  /api/processing/status   processing progress
  GET  /api/transactions        list stored transactions
  GET  /api/balances/{user_id}  latest reported balance
  GET  /health                  health check
  GET  /metrics                 Prometheus metrics`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	collector, registry, err := newCollector(settings)
	if err != nil {
		return err
	}
	var metricsHandler http.Handler = http.NotFoundHandler()
	if registry != nil {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	extractor := extract.NewDefault()
	runner := processing.NewRunner(store, extractor, processing.Options{
		Thresholds: settings.Processing.Thresholds,
		Workers:    settings.Processing.Workers,
		Sink:       storage.NewResilientSink(store, storage.DefaultResilientConfig(), collector),
		Metrics:    collector,
	})

	server := api.NewServer(api.Deps{
		Extractor:      extractor,
		Store:          store,
		Runner:         runner,
		Metrics:        collector,
		MetricsHandler: metricsHandler,
		BatchLimit:     settings.Processing.BatchLimit,
	})
	return server.ListenAndServe(ctx, settings.Server)
}
