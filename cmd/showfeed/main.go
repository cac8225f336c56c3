package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Belphemur/ShowFeed/internal/client"
	"github.com/Belphemur/ShowFeed/internal/config"
	"github.com/Belphemur/ShowFeed/internal/favorites"
	"github.com/Belphemur/ShowFeed/internal/feed"
	"github.com/Belphemur/ShowFeed/internal/metrics"
	"github.com/Belphemur/ShowFeed/internal/reporting"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("catalog_domain", cfg.CatalogDomain).
		Str("cache_provider", cfg.Cache.Provider).
		Str("favorites_path", cfg.Favorites.Path).
		Str("debounce", cfg.Feed.Debounce).
		Msg("Application started with configuration")

	reporter, err := reporting.Init(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialise Sentry, continuing without error reporting")
		reporter = reporting.Nop{}
	}
	defer reporting.Flush(2 * time.Second)

	catalog := client.NewClient(cfg)
	defer catalog.Close()

	store, err := favorites.Open(cfg.Favorites.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Favorites.Path).Msg("Failed to open favorites store")
	}
	defer store.Close()

	repo := feed.NewRepository(catalog, store, feed.Options{
		Debounce:    config.Duration(cfg.Feed.Debounce, feed.DefaultDebounce, "feed.debounce"),
		InitialLoad: cfg.Feed.InitialLoad,
		Reporter:    reporter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		if err := repo.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Feed stopped with error")
		}
	})
	wg.Go(func() {
		for page := range repo.Shows(ctx) {
			printPage(os.Stdout, page)
		}
	})

	go func() {
		readCommands(ctx, os.Stdin, repo, os.Stdout)
		stop()
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")
	wg.Wait()
	logger.Info().Msg("Stopped gracefully")
}
