package catalog

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for catalogue files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalogue loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a catalogue file from disk.
func (l *fileLoader) Load(ctx context.Context, path string) (*Document, error) {
	l.logger.Info().Str("file", path).Msg("loading catalogue file")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open catalogue file")
		return nil, fmt.Errorf("failed to open catalogue file %s: %w", path, err)
	}
	defer file.Close()

	doc, err := decode(file, isCompressed(path))
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to decode catalogue file")
		return nil, fmt.Errorf("failed to decode catalogue file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("categories", len(doc.Data.Categories)).
		Int("products", len(doc.Data.Products)).
		Msg("catalogue file loaded successfully")

	return doc, nil
}

// NewLoader returns the loader for cfg: S3 with local fallback when S3 is
// enabled and reachable, otherwise the local file system only.
func NewLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) Loader {
	fileLoader := NewFileLoader(logger)

	if !cfg.Enabled {
		logger.Info().Msg("using local file system for catalogue files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, true, logger)
}
