package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/HeadlineGoat/internal/config"
	"github.com/IshaanNene/HeadlineGoat/internal/engine"
	"github.com/IshaanNene/HeadlineGoat/internal/monitor"
	"github.com/IshaanNene/HeadlineGoat/internal/parser"
	"github.com/IshaanNene/HeadlineGoat/internal/pipeline"
	"github.com/IshaanNene/HeadlineGoat/internal/storage"
	"github.com/IshaanNene/HeadlineGoat/internal/types"
)

var (
	scrapeSites       []string
	scrapeURLs        []string
	scrapeKeyword     string
	scrapeFormat      string
	scrapeOutput      string
	scrapeRawDir      string
	scrapeConcurrency int
	scrapeStore       string
	scrapeEvery       time.Duration
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [site...]",
		Short: "Scrape headlines from one or more news sites",
		Long: `Scrape the front page of each named site or URL concurrently and print
the report. Site names are looked up in the registry ("hacker news",
"bleeping", "fxstreet.com"); anything unknown is treated as a domain.
With no sites the configured default site is scraped.`,
		RunE: runScrape,
	}

	cmd.Flags().StringArrayVarP(&scrapeSites, "site", "s", nil, "site name to scrape (repeatable)")
	cmd.Flags().StringArrayVarP(&scrapeURLs, "url", "u", nil, "page URL to scrape (repeatable)")
	cmd.Flags().StringVarP(&scrapeKeyword, "keyword", "k", "", "keep only headlines whose title contains this keyword")
	cmd.Flags().StringVarP(&scrapeFormat, "format", "f", "json", "report format: json, yaml, text")
	cmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&scrapeRawDir, "raw-dir", "", "save each fetched page as <dir>/<host>.html")
	cmd.Flags().IntVarP(&scrapeConcurrency, "concurrency", "n", 0, "number of concurrent site tasks (0 = config default)")
	cmd.Flags().StringVar(&scrapeStore, "store", "", "export backends, e.g. jsonl,mongodb (overrides storage.type)")
	cmd.Flags().DurationVar(&scrapeEvery, "every", 0, "repeat the scrape at this interval until interrupted")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scrapeConcurrency > 0 {
		cfg.Engine.Concurrency = scrapeConcurrency
	}
	if scrapeStore != "" {
		cfg.Storage.Type = strings.ToLower(scrapeStore)
	}
	if scrapeRawDir != "" {
		cfg.Storage.RawDir = scrapeRawDir
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch scrapeFormat {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or text)", scrapeFormat)
	}

	logger := setupLogger(&cfg.Logging)

	eng, registry, err := engine.Build(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	targets, err := scrapeTargets(registry, cfg.API.DefaultSite, append(scrapeSites, args...), scrapeURLs)
	if err != nil {
		return err
	}

	var opts []engine.RunOption
	if scrapeKeyword != "" {
		mw, err := pipeline.NewKeywordFilterMiddleware(scrapeKeyword)
		if err != nil {
			return fmt.Errorf("keyword %q: %w", scrapeKeyword, err)
		}
		opts = append(opts, engine.WithMiddleware(mw))
	}

	if cfg.Storage.RawDir != "" {
		sink, err := storage.NewMarkupDir(cfg.Storage.RawDir, logger)
		if err != nil {
			return err
		}
		eng.AddMarkupSink(sink)
	}

	detector, err := monitor.New(&cfg.Monitor, logger)
	if err != nil {
		return err
	}
	if detector != nil {
		eng.AddMarkupSink(detector)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if store != nil {
		eng.SetStorage(store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var out io.Writer = cmd.OutOrStdout()
	if scrapeOutput != "" {
		f, err := os.Create(scrapeOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	scrapeOnce := func(ctx context.Context) error {
		logger.Info("starting scrape", "targets", len(targets), "concurrency", cfg.Engine.Concurrency)
		report := eng.ScrapeAll(ctx, targets, opts...)
		logger.Info("scrape complete",
			"run_id", report.RunID,
			"sites", report.Count,
			"succeeded", report.Succeeded(),
			"elapsed", report.Elapsed,
		)
		return writeReport(out, report, scrapeFormat)
	}

	if scrapeEvery <= 0 {
		return scrapeOnce(ctx)
	}

	var writeErr error
	monitor.NewScheduler(scrapeEvery, logger).Run(ctx, func(ctx context.Context) {
		if err := scrapeOnce(ctx); err != nil {
			writeErr = err
			stop()
		}
	})
	return writeErr
}

// scrapeTargets resolves site names through the registry and validates raw
// URLs. With neither, the default site is used.
func scrapeTargets(registry *parser.Registry, defaultSite string, names, urls []string) ([]types.Target, error) {
	var targets []types.Target
	for _, name := range names {
		t, err := registry.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("site %q: %w", name, err)
		}
		targets = append(targets, t)
	}
	for _, raw := range urls {
		t, err := types.NewTarget("", raw)
		if err != nil {
			return nil, err
		}
		if site := registry.Resolve(t); site != nil {
			t.Name = site.Name
		}
		targets = append(targets, t)
	}

	if len(targets) == 0 {
		t, err := registry.Lookup(defaultSite)
		if err != nil {
			return nil, fmt.Errorf("default site %q: %w", defaultSite, err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func writeReport(w io.Writer, report *types.Report, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "text":
		for _, r := range report.Results {
			status := "ok"
			if !r.OK {
				status = r.Error
			}
			fmt.Fprintf(w, "== %s (%s) [%s]\n", r.Site, r.URL, status)
			for _, h := range r.Items {
				fmt.Fprintf(w, "  - %s\n    %s\n", h.Title, h.Link)
			}
		}
		return nil
	default:
		data, err := report.JSON(true)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
}
