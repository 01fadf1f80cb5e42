package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/analytics/requests"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/execution"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/embedded-search/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"shards", cfg.Search.Shards,
		"workers", execution.Workers(cfg.Search.Workers),
	)

	defaultMode, err := execution.ParseMode(cfg.Search.DefaultMode)
	if err != nil {
		slog.Error("invalid default mode", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	server, err := searcher.New(searcher.Options{
		StopWords:      cfg.Search.StopWords,
		Shards:         cfg.Search.Shards,
		Workers:        cfg.Search.Workers,
		QueryCacheSize: cfg.Search.QueryCacheSize,
		Metrics:        m,
	})
	if err != nil {
		slog.Error("failed to create search server", "error", err)
		os.Exit(1)
	}

	if cfg.Search.CorpusPath != "" {
		if _, err := corpus.LoadFile(server, cfg.Search.CorpusPath); err != nil {
			slog.Error("failed to load corpus", "path", cfg.Search.CorpusPath, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if m != nil {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, metrics.Handler())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	queue := requests.NewQueue(server, cfg.Search.RequestWindow, m)
	h := handler.New(server, queue, defaultMode, cfg.Search.Workers)

	checker := health.NewChecker()
	checker.Register("index", health.IndexCheck(server, 0))

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", httpServer.Addr, "documents", server.DocumentCount())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
