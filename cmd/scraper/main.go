package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raghavshulka/maps-llm-based-scrapper/config"
	"github.com/raghavshulka/maps-llm-based-scrapper/extract"
	"github.com/raghavshulka/maps-llm-based-scrapper/harvest"
	"github.com/raghavshulka/maps-llm-based-scrapper/models"
	"github.com/raghavshulka/maps-llm-based-scrapper/pipeline"
	"github.com/raghavshulka/maps-llm-based-scrapper/remote"
	"github.com/raghavshulka/maps-llm-based-scrapper/scraper"
	"github.com/raghavshulka/maps-llm-based-scrapper/store"
)

func main() {
	config.LoadEnv()

	defaultCfg := config.DefaultConfig()
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("SCRAPER_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	stateDefault := defaultCfg.StateFile
	if value, ok := config.EnvString("SCRAPER_STATE"); ok {
		stateDefault = value
	}
	delayDefault := int(defaultCfg.Delay / time.Millisecond)
	if value, ok, err := config.EnvInt("SCRAPER_DELAY_MS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_DELAY_MS: %v\n", err)
		os.Exit(1)
	} else if ok {
		delayDefault = value
	}
	apiKeyDefault := ""
	if value, ok := config.EnvString("OPENROUTER_API_KEY"); ok {
		apiKeyDefault = value
	}
	dsnDefault := ""
	if value, ok := config.EnvString("POSTGRES_DSN"); ok {
		dsnDefault = value
	}

	snapshotDir := flag.String("snapshots", "", "Directory of saved listing snapshots (*.html)")
	delayMs := flag.Int("delay", delayDefault, "Delay between listings (milliseconds)")
	settleMs := flag.Int("settle", int(defaultCfg.SettleDelay/time.Millisecond), "Settle delay before a harvest rescan (milliseconds)")
	harvestTries := flag.Int("harvest-tries", defaultCfg.MaxHarvestTries, "Maximum harvest attempts per listing")
	noScroll := flag.Bool("no-scroll", false, "Process only the listings already visible")
	noRemote := flag.Bool("no-remote", false, "Disable language-model fallback states")
	apiKey := flag.String("api-key", apiKeyDefault, "OpenRouter API key for the language-model states")
	model := flag.String("model", defaultCfg.LLMModel, "Language model to use")
	outputFile := flag.String("output", outputDefault, "Output file path")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: csv, json, dual, or postgres")
	postgresDSN := flag.String("postgres-dsn", dsnDefault, "Postgres connection string (format=postgres)")
	stateFile := flag.String("state", stateDefault, "State file accumulating records across runs")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.SettleDelay = time.Duration(*settleMs) * time.Millisecond
	cfg.MaxHarvestTries = *harvestTries
	cfg.AutoScroll = !*noScroll
	cfg.RemoteFallback = !*noRemote
	cfg.APIKey = *apiKey
	cfg.LLMModel = *model
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.PostgresDSN = *postgresDSN
	cfg.StateFile = *stateFile
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if *snapshotDir == "" {
		slog.Error("no snapshot directory given, use -snapshots")
		os.Exit(1)
	}

	slog.Info("starting email discovery",
		slog.String("snapshots", *snapshotDir),
		slog.String("format", cfg.OutputFormat),
		slog.Bool("remote_fallback", cfg.RemoteFallback && cfg.APIKeyConfigured()),
	)

	metrics := scraper.NewMetrics()
	validator := extract.NewValidator(0)
	harvester := harvest.NewHarvester(harvest.DefaultSelectors(), validator, cfg.MaxHarvestTries, cfg.SettleDelay)
	harvester.OnRetry(metrics.IncHarvestRetry)
	fetcher := remote.NewWebsiteFetcher(cfg.RelayEndpoints, cfg.FetchTimeout, cfg.UserAgent, cfg.MaxContactPages, validator)
	llm := remote.NewClient(cfg.LLMEndpoint, cfg.LLMModel, cfg.APIKey, cfg.FetchTimeout)
	orchestrator := scraper.NewOrchestrator(cfg, harvester, validator, fetcher, llm, metrics)

	writer, err := createWriter(cfg)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing the listing in flight")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	p := pipeline.NewPipeline(writer)
	p.Start(1)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	surface := scraper.NewFileSurface(*snapshotDir)
	session := scraper.NewSession(cfg, surface, orchestrator, p, metrics)

	startTime := time.Now()
	result, err := session.Run(ctx)
	if err != nil {
		slog.Error("scraping failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := p.Close(); err != nil {
		slog.Error("pipeline shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.StateFile != "" {
		fileStore := store.NewFileStore(cfg.StateFile)
		state, err := fileStore.Load()
		if err != nil {
			slog.Error("loading state", slog.Any("error", err))
			os.Exit(1)
		}
		state.Merge(result)
		state.Settings = &store.Settings{
			DelayMs:        int(cfg.Delay / time.Millisecond),
			AutoScroll:     cfg.AutoScroll,
			RemoteFallback: cfg.RemoteFallback,
			PromptTemplate: cfg.PromptTemplate,
		}
		if err := fileStore.Save(state); err != nil {
			slog.Error("saving state", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	result.Stats = p.Stats()
	printSummary(result, time.Since(startTime), cfg.OutputFile)
}

func createWriter(cfg *config.Config) (pipeline.OutputWriter, error) {
	switch cfg.OutputFormat {
	case "json":
		return pipeline.NewJSONWriter(cfg.OutputFile)
	case "csv":
		return pipeline.NewCSVWriter(cfg.OutputFile)
	case "dual":
		jsonFilename := strings.TrimSuffix(cfg.OutputFile, ".csv") + ".json"
		return pipeline.NewDualWriter(cfg.OutputFile, jsonFilename)
	case "postgres":
		return pipeline.NewPostgresWriter(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported format: %s", cfg.OutputFormat)
	}
}

func printSummary(result *models.SessionResult, duration time.Duration, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Session complete")

	fmt.Printf("  Run ID:        %s\n", result.RunID)
	fmt.Printf("  Listings:      %d\n", result.ListingCount)
	fmt.Printf("  Emails found:  %d\n", result.EmailCount)
	if result.Stats.Total() > 0 {
		fmt.Printf("  By source:     direct=%d website=%d ai=%d inferred=%d\n",
			result.Stats.Direct, result.Stats.Website, result.Stats.AI, result.Stats.Inferred)
	}
	fmt.Printf("  Errors:        %d\n", result.ErrorCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
