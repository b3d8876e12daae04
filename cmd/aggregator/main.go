package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ainews-watch/aggregator/internal/categorize"
	"ainews-watch/aggregator/internal/config"
	"ainews-watch/aggregator/internal/database"
	"ainews-watch/aggregator/internal/extract"
	"ainews-watch/aggregator/internal/feeds"
	importsources "ainews-watch/aggregator/internal/import"
	"ainews-watch/aggregator/internal/llm"
	"ainews-watch/aggregator/internal/process"
	"ainews-watch/aggregator/internal/schedule"
	"ainews-watch/aggregator/internal/server"
	"ainews-watch/aggregator/internal/summarize"
)

const runTimeout = 2 * time.Hour

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func usage() {
	fmt.Println("Usage: aggregator [command] [options]")
	fmt.Println("Commands: import, start, server")
	fmt.Println("\nFor command-specific options, use: aggregator [command] -h")
}

func main() {
	cfg := config.DefaultConfig()

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importCmd.StringVar(&cfg.SourcesPath, "sources", cfg.SourcesPath,
		"Path or http(s) URL of the sources YAML file, empty for the built-in list (env: AGGREGATOR_SOURCES_PATH)")
	importCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database file (env: AGGREGATOR_DB_PATH)")
	importLogLevel := importCmd.String("log-level", cfg.LogLevel.String(),
		"Log level: debug, info, warn, error (env: AGGREGATOR_LOG_LEVEL)")

	startCmd := flag.NewFlagSet("start", flag.ExitOnError)
	startCmd.StringVar(&cfg.SourcesPath, "sources", cfg.SourcesPath,
		"Sources YAML file synced before the first run, empty for the built-in list (env: AGGREGATOR_SOURCES_PATH)")
	startCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database file (env: AGGREGATOR_DB_PATH)")
	startCmd.IntVar(&cfg.UpdateHour, "hour", cfg.UpdateHour,
		"Hour of the daily run, local time (env: DAILY_UPDATE_HOUR)")
	startCmd.IntVar(&cfg.UpdateMinute, "minute", cfg.UpdateMinute,
		"Minute of the daily run (env: DAILY_UPDATE_MINUTE)")
	startCmd.IntVar(&cfg.RetentionDays, "retention", cfg.RetentionDays,
		"Number of days to retain articles (env: AGGREGATOR_RETENTION_DAYS)")
	startCmd.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr,
		"Address to serve Prometheus metrics on, empty to disable (env: AGGREGATOR_METRICS_ADDR)")
	once := startCmd.Bool("once", false, "Run a single update and exit")
	startLogLevel := startCmd.String("log-level", cfg.LogLevel.String(),
		"Log level: debug, info, warn, error (env: AGGREGATOR_LOG_LEVEL)")

	serverCmd := flag.NewFlagSet("server", flag.ExitOnError)
	serverCmd.StringVar(&cfg.DBPath, "db", cfg.DBPath,
		"Path to the SQLite database file (env: AGGREGATOR_DB_PATH)")
	serverCmd.StringVar(&cfg.ServerHost, "host", cfg.ServerHost,
		"Host to bind the server to (env: AGGREGATOR_HOST)")
	serverCmd.IntVar(&cfg.ServerPort, "port", cfg.ServerPort,
		"Port to listen on (env: AGGREGATOR_PORT)")
	serverLogLevel := serverCmd.String("log-level", cfg.LogLevel.String(),
		"Log level: debug, info, warn, error (env: AGGREGATOR_LOG_LEVEL)")

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "import":
		importCmd.Parse(os.Args[2:])
		setLogLevel(cfg, *importLogLevel)
		if err = runImport(cfg); err != nil {
			log.Error().Err(err).Msg("Import failed")
		}

	case "start":
		startCmd.Parse(os.Args[2:])
		setLogLevel(cfg, *startLogLevel)
		if err = runStart(cfg, *once); err != nil {
			log.Error().Err(err).Msg("Processing failed")
		}

	case "server":
		serverCmd.Parse(os.Args[2:])
		setLogLevel(cfg, *serverLogLevel)
		if err = runServer(cfg); err != nil {
			log.Error().Err(err).Msg("Server failed")
		}

	case "-h", "--help", "help":
		usage()

	default:
		log.Error().Str("command", os.Args[1]).Msg("Unknown command")
		usage()
		os.Exit(1)
	}

	if err != nil {
		os.Exit(1)
	}
}

func setLogLevel(cfg *config.Config, raw string) {
	if level, err := zerolog.ParseLevel(raw); err == nil {
		cfg.LogLevel = level
	} else {
		log.Warn().Str("log_level", raw).Msg("Unknown log level, keeping default")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
}

func openDB(cfg *config.Config, readOnly bool) (*database.DB, error) {
	dbCfg := database.NewConfig(cfg.DBPath)
	dbCfg.ReadOnly = readOnly

	db, err := database.NewDB(dbCfg)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("Failed to initialize database")
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// runImport upserts the sources file into the database. Existing articles
// are kept.
func runImport(cfg *config.Config) error {
	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := importsources.NewImporter(db).ImportSources(context.Background(), cfg.SourcesPath)
	if err != nil {
		return err
	}
	res.Print(os.Stdout)
	return nil
}

// runStart syncs sources, then runs the pipeline once or on the daily schedule.
func runStart(cfg *config.Config, once bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openDB(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		select {
		case sig := <-shutdown:
			log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := importsources.NewImporter(db).ImportSources(ctx, cfg.SourcesPath); err != nil {
		return err
	}

	pipeline, closeLLM, err := buildPipeline(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeLLM()

	if once {
		log.Info().Msg("Running in one-shot mode")
		stats, err := runCycle(ctx, pipeline)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("Run canceled by shutdown signal")
				return nil
			}
			return err
		}
		fmt.Printf("Stored %d new articles (%d duplicates, %d errors)\n", stats.New, stats.Duplicates, stats.Errors)
		return nil
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	daily, err := schedule.NewDaily(cfg.UpdateHour, cfg.UpdateMinute, time.Local)
	if err != nil {
		return err
	}

	err = daily.Start(ctx, func(ctx context.Context) {
		log.Info().Msg("Starting scheduled processing cycle")
		if _, err := runCycle(ctx, pipeline); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Processing cycle failed")
		}
		log.Info().Time("next_run", daily.Next()).Msg("Waiting for next processing cycle")
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("hour", cfg.UpdateHour).
		Int("minute", cfg.UpdateMinute).
		Time("next_run", daily.Next()).
		Msg("Running in daily mode")

	<-ctx.Done()
	log.Info().Msg("Waiting for running cycle to finish")
	<-daily.Stop().Done()
	log.Info().Msg("Shutting down daily processing")
	return nil
}

// buildPipeline wires the pipeline collaborators. Without an LLM credential
// the summarizer and categorizer use their local fallbacks.
func buildPipeline(ctx context.Context, cfg *config.Config, db *database.DB) (*process.Pipeline, func(), error) {
	var completer llm.Completer
	closeLLM := func() {}

	client, err := llm.New(ctx, llm.Config{
		Provider:     cfg.LLMProvider,
		Model:        cfg.LLMModel,
		BaseURL:      cfg.LLMBaseURL,
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		GeminiKey:    cfg.GeminiKey,
		Timeout:      cfg.LLMTimeout,
	})
	switch {
	case err == nil:
		completer = client
		closeLLM = func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close LLM client")
			}
		}
		log.Info().Str("provider", client.Provider()).Str("model", client.Model()).Msg("Hosted summarization enabled")
	case errors.Is(err, llm.ErrNoCredential):
		log.Info().Msg("No LLM credential configured, using local summarization and categorization")
	default:
		log.Warn().Err(err).Msg("Failed to initialize LLM client, using local summarization and categorization")
	}

	pipeline, err := process.NewPipeline(process.Deps{
		Store:       db,
		Fetcher:     feeds.NewFetcher(feeds.Config{UserAgent: cfg.UserAgent, Timeout: cfg.FetchTimeout}),
		Extractor:   extract.New(extract.Config{UserAgent: cfg.UserAgent, Timeout: cfg.ExtractTimeout}),
		Summarizer:  summarize.New(completer),
		Categorizer: categorize.New(completer),
		Metrics:     process.NewMetrics(prometheus.DefaultRegisterer),
	}, process.Options{RetentionDays: cfg.RetentionDays})
	if err != nil {
		closeLLM()
		return nil, nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	return pipeline, closeLLM, nil
}

func runCycle(ctx context.Context, pipeline *process.Pipeline) (process.RunStats, error) {
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	stats, err := pipeline.Run(runCtx)
	if err != nil {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		return stats, fmt.Errorf("processing error: %w", err)
	}
	return stats, nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("address", addr).Msg("Metrics server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}

// runServer starts the read-only HTTP API.
func runServer(cfg *config.Config) error {
	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	return server.RunServer(db, cfg.ListenAddr(), log.Logger, cfg.APIKey)
}
