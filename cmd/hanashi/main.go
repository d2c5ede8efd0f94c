// Package main is the hanashi CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/hanashi/internal/assembler"
	"github.com/hyperjump/hanashi/internal/assistant"
	"github.com/hyperjump/hanashi/internal/config"
	"github.com/hyperjump/hanashi/internal/crm"
	"github.com/hyperjump/hanashi/internal/index"
	"github.com/hyperjump/hanashi/internal/llm"
	"github.com/hyperjump/hanashi/internal/orders"
	"github.com/hyperjump/hanashi/internal/refresh"
	"github.com/hyperjump/hanashi/internal/server"
	"github.com/hyperjump/hanashi/internal/session"
	"github.com/hyperjump/hanashi/internal/sources"
	"github.com/hyperjump/hanashi/internal/transcript"
	"github.com/hyperjump/hanashi/internal/watcher"
	"github.com/hyperjump/hanashi/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/hanashi/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if
// that exists it is used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		runServer(os.Args[1:])
		return
	}
	switch os.Args[1] {
	case "server":
		runServer(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("hanashi version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	// Knowledge index and its sources.
	idx := index.New(index.DefaultBoosts(
		cfg.Retrieval.CatalogBoostFactor,
		cfg.Retrieval.CuratedFAQBoostFactor,
	)...)

	curated := sources.NewCurated(cfg.Knowledge.CuratedPath)
	var crawler *sources.Crawler
	if len(cfg.Crawl.Seeds) > 0 {
		crawler = sources.NewCrawler(sources.CrawlerConfig{
			Seeds:             cfg.Crawl.Seeds,
			MaxPages:          cfg.Crawl.MaxPages,
			MinContentChars:   cfg.Crawl.MinContentChars,
			RequestsPerSecond: cfg.Crawl.RequestsPerSecond,
			FetchTimeout:      time.Duration(cfg.Crawl.TimeoutSeconds) * time.Second,
		}, logger)
	}
	catalog := sources.NewCatalogClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.AccessToken,
		time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
	)
	aggregator := sources.NewAggregator(curated, crawler, catalog, cfg.Retrieval.MaxDocChars, logger)
	scheduler := refresh.NewScheduler(aggregator, idx,
		time.Duration(cfg.Retrieval.RefreshIntervalMin)*time.Minute, logger)
	scheduler.ForceRefresh()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Live reload of the curated knowledge file.
	if cfg.Knowledge.CuratedPath != "" {
		knowledgeWatch := watcher.NewFileWatcher(cfg.Knowledge.CuratedPath, func() {
			if err := curated.Reload(); err != nil {
				logger.Warn("knowledge reload failed", zap.Error(err))
				return
			}
			logger.Info("knowledge file reloaded, rebuilding index")
			scheduler.ForceRefresh()
		}, logger)
		if err := knowledgeWatch.Start(ctx); err != nil {
			logger.Warn("knowledge watcher failed to start", zap.Error(err))
		} else {
			defer knowledgeWatch.Stop()
		}
	}

	// External collaborators.
	orderClient := orders.NewClient(
		cfg.Orders.BaseURL,
		cfg.Orders.ClientID,
		cfg.Orders.ClientSecret,
		time.Duration(cfg.Orders.TimeoutSeconds)*time.Second,
		logger,
	)
	var orderLookup assembler.OrderLookup
	if orderClient.Configured() {
		orderLookup = orderClient
	} else {
		logger.Info("order lookup unconfigured, disabled")
	}

	crmClient := crm.NewClient(
		cfg.CRM.BaseURL,
		cfg.CRM.APIKey,
		time.Duration(cfg.CRM.TimeoutSeconds)*time.Second,
	)
	var crmLookup assembler.CRMLookup
	if crmClient.Configured() {
		crmLookup = crmClient
	} else {
		logger.Info("crm lookup unconfigured, disabled")
	}

	var generator llm.Client
	openaiClient, err := llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), cfg.LLM.Model, cfg.LLM.MaxTokens)
	if err != nil {
		logger.Warn("generation service unconfigured, chat turns will fail", zap.Error(err))
	} else {
		generator = openaiClient
	}

	var mailer transcript.Mailer
	if cfg.Mail.SMTPAddr != "" {
		mailer = transcript.NewSMTPMailer(cfg.Mail.SMTPAddr, cfg.Mail.From, cfg.Mail.Username, cfg.Mail.Password)
	} else {
		mailer = transcript.NewLogMailer(logger)
	}
	dispatcher := transcript.NewDispatcher(mailer, cfg.Mail.Recipient, logger)

	// Session engine with background reaper.
	sessions := session.NewEngine(session.Config{
		WarnAfter:       time.Duration(cfg.Session.WarnAfterMinutes) * time.Minute,
		CloseAfter:      time.Duration(cfg.Session.CloseAfterMinutes) * time.Minute,
		MaxDuration:     time.Duration(cfg.Session.MaxDurationMinutes) * time.Minute,
		MaxMessages:     cfg.Session.MaxMessages,
		ReapInterval:    time.Duration(cfg.Session.ReapIntervalSeconds) * time.Second,
		ClosedRetention: time.Duration(cfg.Session.ClosedRetentionMinutes) * time.Minute,
	}, dispatcher, logger)
	sessions.StartReaper(ctx)

	asm := assembler.New(idx, orderLookup, crmLookup,
		assembler.NewStopwordDetector(),
		assembler.NewTermExpander(),
		assembler.Config{
			TopK:            cfg.Retrieval.TopK,
			SnippetMaxChars: cfg.Retrieval.SnippetMaxChars,
			ContextMaxChars: cfg.Retrieval.ContextMaxChars,
		}, logger)

	asst := assistant.New(sessions, asm, scheduler, generator, logger)
	srv := server.NewServer(asst, sessions, idx, scheduler, &cfg.Server, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func printUsage() {
	fmt.Println(`hanashi - storefront support assistant service

Usage:
  hanashi server [flags]   Start the HTTP server
  hanashi version          Show version
  hanashi help             Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/hanashi/config.yaml)
  --debug            Enable debug logging

Endpoints:
  POST /chat           One conversation turn ({session_id, message})
  POST /chat/end       Close a conversation ({session_id})
  GET  /chat/poll      Idle-timeout check (?session_id=)
  POST /search         Knowledge lookup ({query, limit})
  GET  /health         Liveness
  GET  /api/v1/status  Index and session stats
  GET  /metrics        Prometheus metrics`)
}
