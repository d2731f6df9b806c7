package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/HeadlineGoat/internal/api"
	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/engine"
	"github.com/IshaanNene/HeadlineGoat/internal/monitor"
	"github.com/IshaanNene/HeadlineGoat/internal/observability"
	"github.com/IshaanNene/HeadlineGoat/internal/storage"
)

var (
	servePort       int
	serveDailyLimit int
	serveQuotaPath  string
)

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the scraper over HTTP:

  GET  /scrape?site=&url=&keyword=   report JSON
  POST /scrape                       {"targets":[{"site":"..."},{"url":"..."}],"keyword":"..."}
  GET  /audio?site=&keyword=         joined titles as text/plain
  GET  /sites, /stats, /healthz, /metrics`,
		RunE: runServe,
	}

	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (0 = config default)")
	cmd.Flags().IntVar(&serveDailyLimit, "daily-limit", -1, "requests per client per day (-1 = config default, 0 = unlimited)")
	cmd.Flags().StringVar(&serveQuotaPath, "quota-db", "", "persist quota counters in this bbolt file")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveDailyLimit >= 0 {
		cfg.API.DailyLimit = serveDailyLimit
	}
	if serveQuotaPath != "" {
		cfg.API.QuotaPath = serveQuotaPath
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(&cfg.Logging)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(logger)
	}

	eng, registry, err := engine.Build(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer eng.Close()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if store != nil {
		eng.SetStorage(store)
	}

	detector, err := monitor.New(&cfg.Monitor, logger)
	if err != nil {
		return err
	}
	if detector != nil {
		eng.AddMarkupSink(detector)
	}

	quota, err := newQuota(&cfg.API)
	if err != nil {
		return err
	}
	if quota != nil {
		defer quota.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(cfg, eng, registry, quota, metrics, logger)
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.API.Port))
}

// newQuota returns nil when the daily limit is disabled.
func newQuota(cfg *config.APIConfig) (api.Quota, error) {
	if cfg.DailyLimit <= 0 {
		return nil, nil
	}
	if cfg.QuotaPath != "" {
		q, err := api.NewBoltQuota(cfg.QuotaPath, cfg.DailyLimit)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	return api.NewMemoryQuota(cfg.DailyLimit), nil
}
