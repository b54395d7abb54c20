package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("file", "", "catalogue file to import (.json or .json.gz); defaults to CATALOG_IMPORT_PATH")
	migrate := flag.Bool("migrate", true, "apply database migrations before importing")
	flag.Parse()

	cfg, err := config.LoadWithoutAuth()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	if *path == "" {
		*path = cfg.Catalog.ImportPath
	}
	if *path == "" {
		return errors.New("no catalogue file given: use -file or CATALOG_IMPORT_PATH")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if *migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	doc, err := catalog.NewLoader(ctx, cfg.S3, logger).Load(ctx, *path)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	importer := catalog.NewImporter(repository.NewCatalogRepository(pool, logger), nil, logger)
	result, err := importer.Import(ctx, doc)
	if errors.Is(err, model.ErrCatalogAlreadyImported) {
		logger.Warn().Str("file", *path).Msg(model.ErrCatalogAlreadyImported.Message)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to import catalogue: %w", err)
	}

	fmt.Printf("Imported %d categories, %d products and %d attribute values from %s\n",
		result.Categories, result.Products, result.AttributeValues, *path)

	return nil
}
