package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/app"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/server"
)

// sessionMaxAge bounds how long an idle API session is kept.
const sessionMaxAge = 24 * time.Hour

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code 2 when no article could be analyzed, 1 otherwise.
		if errors.Is(err, app.ErrNoArticles) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// loadConfig resolves configuration with the precedence
// defaults < config file < environment (and dotenv files) < explicit flags.
func loadConfig(args []string, stderr io.Writer) (app.Config, error) {
	cfg := app.DefaultConfig()
	fs := flag.NewFlagSet("wikibias", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath string
		envFiles   string
		topics     string
	)
	flagCfg := app.DefaultConfig()
	fs.StringVar(&configPath, "config", os.Getenv("WIKIBIAS_CONFIG"), "Path to a YAML or JSON config file")
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load; missing files are skipped")
	fs.StringVar(&topics, "topics", "", "Comma-separated list of topics")
	fs.IntVar(&flagCfg.TopK, "k", flagCfg.TopK, "Number of most viewed articles to analyze")
	fs.StringVar(&flagCfg.Date, "date", "", "Popularity day as YYYY/MM/DD (default yesterday, UTC)")
	fs.StringVar(&flagCfg.WikiAPIURL, "wiki.api", "", "MediaWiki action API URL")
	fs.StringVar(&flagCfg.PageviewsURL, "pageviews.url", "", "Wikimedia per-article pageviews base URL")
	fs.StringVar(&flagCfg.FileSearchPath, "search.file", "", "Path to JSON file for offline title discovery")
	fs.StringVar(&flagCfg.UserAgent, "ua", flagCfg.UserAgent, "User-Agent for Wikimedia requests")
	fs.DurationVar(&flagCfg.RequestTimeout, "timeout", flagCfg.RequestTimeout, "Per-request HTTP timeout")
	fs.IntVar(&flagCfg.MaxConcurrent, "max.concurrent", flagCfg.MaxConcurrent, "Maximum concurrent outbound requests per stage")
	fs.StringVar(&flagCfg.CacheDir, "cache.dir", flagCfg.CacheDir, "Cache directory path")
	fs.DurationVar(&flagCfg.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&flagCfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&flagCfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.StringVar(&flagCfg.ClassifierURL, "classifier.url", "", "Hosted subjectivity classifier endpoint")
	fs.StringVar(&flagCfg.ClassifierModel, "classifier.model", "", "LLM model used as classifier when no endpoint is set")
	fs.IntVar(&flagCfg.BatchSize, "batch", flagCfg.BatchSize, "Sentences per classification request")
	fs.Float64Var(&flagCfg.Threshold, "threshold", flagCfg.Threshold, "Subjective probability threshold")
	fs.StringVar(&flagCfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&flagCfg.LLMModel, "llm.model", "", "Model name for neutralization and argument discovery")
	fs.StringVar(&flagCfg.LLMAPIKey, "llm.key", "", "API key for OpenAI-compatible server")
	fs.StringVar(&flagCfg.OutputPath, "output", flagCfg.OutputPath, "Path to write the Markdown report")
	fs.StringVar(&flagCfg.OutputPDFPath, "output.pdf", "", "Optional path to write a PDF report")
	fs.StringVar(&flagCfg.ServeAddr, "serve", "", "Serve the session API on this address instead of writing a report")
	fs.BoolVar(&flagCfg.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	app.ApplyEnvToConfig(&cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "topics":
			cfg.Topics = app.ParseTopics(topics)
		case "k":
			cfg.TopK = flagCfg.TopK
		case "date":
			cfg.Date = flagCfg.Date
		case "wiki.api":
			cfg.WikiAPIURL = flagCfg.WikiAPIURL
		case "pageviews.url":
			cfg.PageviewsURL = flagCfg.PageviewsURL
		case "search.file":
			cfg.FileSearchPath = flagCfg.FileSearchPath
		case "ua":
			cfg.UserAgent = flagCfg.UserAgent
		case "timeout":
			cfg.RequestTimeout = flagCfg.RequestTimeout
		case "max.concurrent":
			cfg.MaxConcurrent = flagCfg.MaxConcurrent
		case "cache.dir":
			cfg.CacheDir = flagCfg.CacheDir
		case "cache.maxAge":
			cfg.CacheMaxAge = flagCfg.CacheMaxAge
		case "cache.clear":
			cfg.CacheClear = flagCfg.CacheClear
		case "cache.strictPerms":
			cfg.CacheStrictPerms = flagCfg.CacheStrictPerms
		case "classifier.url":
			cfg.ClassifierURL = flagCfg.ClassifierURL
		case "classifier.model":
			cfg.ClassifierModel = flagCfg.ClassifierModel
		case "batch":
			cfg.BatchSize = flagCfg.BatchSize
		case "threshold":
			cfg.Threshold = flagCfg.Threshold
		case "llm.base":
			cfg.LLMBaseURL = flagCfg.LLMBaseURL
		case "llm.model":
			cfg.LLMModel = flagCfg.LLMModel
		case "llm.key":
			cfg.LLMAPIKey = flagCfg.LLMAPIKey
		case "output":
			cfg.OutputPath = flagCfg.OutputPath
		case "output.pdf":
			cfg.OutputPDFPath = flagCfg.OutputPDFPath
		case "serve":
			cfg.ServeAddr = flagCfg.ServeAddr
		case "v":
			cfg.Verbose = flagCfg.Verbose
		}
	})

	if err := app.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	if cfg.ServeAddr == "" {
		return a.Run(ctx)
	}

	srv := server.New(a)
	go expireSessions(ctx, srv)
	return srv.Run(ctx, cfg.ServeAddr)
}

func expireSessions(ctx context.Context, srv *server.Server) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := srv.Sessions.Expire(sessionMaxAge); n > 0 {
				log.Debug().Int("expired", n).Msg("sessions expired")
			}
		}
	}
}
