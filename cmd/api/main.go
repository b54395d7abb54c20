package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	attributeRepo := repository.NewAttributeRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	catalogRepo := repository.NewCatalogRepository(pool, logger)

	// Initialize resolvers
	productResolver := service.NewProductResolver(productRepo, categoryRepo, appMetrics, logger)
	attributeResolver := service.NewAttributeResolver(attributeRepo, logger)
	orderComposer := service.NewOrderComposer(orderRepo, appMetrics, logger)

	if cfg.Catalog.ImportPath != "" {
		if err := importCatalog(ctx, cfg, catalogRepo, appMetrics, logger); err != nil {
			return err
		}
	}

	if err := productResolver.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	// Initialize cart storage
	carts, closeCarts, err := newCartRegistry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCarts()
	carts.OnChange(func(name string, e cart.Event) {
		appMetrics.IncCartChange(string(e.Op))
		logger.Debug().
			Str("cart", name).
			Str("op", string(e.Op)).
			Int("count", e.Snapshot.Count).
			Str("total", e.Snapshot.Total.StringFixed(2)).
			Int64("version", e.Snapshot.Version).
			Msg("cart changed")
	})

	cartService := service.NewCartService(carts, productResolver, attributeResolver, orderComposer, logger)

	// Initialize HTTP handlers
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productResolver, attributeResolver, logger),
		Carts:    handler.NewCartHandler(cartService, logger),
		Orders:   handler.NewOrderHandler(orderComposer, logger),
	}, registry, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// importCatalog loads the configured catalogue. A catalogue that is already
// in the database is not an error.
func importCatalog(ctx context.Context, cfg *config.Config, repo repository.CatalogRepository, m *metrics.Collectors, logger zerolog.Logger) error {
	loader := catalog.NewLoader(ctx, cfg.S3, logger)

	doc, err := loader.Load(ctx, cfg.Catalog.ImportPath)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	_, err = catalog.NewImporter(repo, m, logger).Import(ctx, doc)
	if errors.Is(err, model.ErrCatalogAlreadyImported) {
		logger.Info().Str("path", cfg.Catalog.ImportPath).Msg("catalogue already imported, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to import catalogue: %w", err)
	}

	return nil
}

// newCartRegistry stores carts in Redis when enabled, following changes made
// by other instances until ctx is cancelled. Otherwise carts live in memory.
func newCartRegistry(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*cart.Registry, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("using in-memory cart storage (redis disabled)")
		return cart.NewRegistry(cart.NewMemoryStorage(), cfg.Cart.KeyPrefix, cfg.Cart.MaxLoaded, logger), func() {}, nil
	}

	client, err := cart.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	storage := cart.NewRedisStorage(client, cfg.Redis.Channel, time.Duration(cfg.Cart.TTL)*time.Second, logger)
	registry := cart.NewRegistry(storage, cfg.Cart.KeyPrefix, cfg.Cart.MaxLoaded, logger)

	go func() {
		if err := storage.Follow(ctx, registry); err != nil {
			logger.Error().Err(err).Msg("stopped following cart changes")
		}
	}()

	closeClient := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	return registry, closeClient, nil
}
