package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const uniqueViolation = "23505"

type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalogue writer.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

func (r *catalogRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *catalogRepository) InsertCategory(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn().Str("category", name).Msg("category already exists")
			return 0, model.ErrCatalogAlreadyImported
		}
		r.logger.Error().Err(err).Str("category", name).Msg("failed to insert category")
		return 0, fmt.Errorf("failed to insert category: %w", err)
	}
	return id, nil
}

func (r *catalogRepository) InsertProduct(ctx context.Context, tx pgx.Tx, product model.Product, categoryID int64) error {
	query := `
		INSERT INTO products (id, name, description, in_stock, brand, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var inStock int16
	if product.InStock {
		inStock = 1
	}

	_, err := tx.Exec(ctx, query, product.ID, product.Name, product.Description, inStock, product.Brand, categoryID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrCatalogAlreadyImported
		}
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *catalogRepository) InsertPrice(ctx context.Context, tx pgx.Tx, product model.Product) error {
	query := `
		INSERT INTO prices (product_id, amount, currency_label, currency_symbol)
		VALUES ($1, $2, $3, $4)
	`

	_, err := tx.Exec(ctx, query, product.ID, product.Price, product.CurrencyLabel, product.CurrencySymbol)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to insert price")
		return fmt.Errorf("failed to insert price: %w", err)
	}
	return nil
}

func (r *catalogRepository) InsertImages(ctx context.Context, tx pgx.Tx, productID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	query := `INSERT INTO product_images (product_id, url, position) VALUES ($1, $2, $3)`

	batch := &pgx.Batch{}
	for i, url := range urls {
		batch.Queue(query, productID, url, i)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range urls {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to insert product image")
			return fmt.Errorf("failed to insert product image: %w", err)
		}
	}
	return nil
}

func (r *catalogRepository) UpsertAttribute(ctx context.Context, tx pgx.Tx, name string, kind model.AttributeKind) (int64, error) {
	query := `
		INSERT INTO attributes (name, kind)
		VALUES ($1, $2)
		ON CONFLICT (name, kind) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id int64
	if err := tx.QueryRow(ctx, query, name, string(kind)).Scan(&id); err != nil {
		r.logger.Error().Err(err).Str("attribute", name).Msg("failed to upsert attribute")
		return 0, fmt.Errorf("failed to upsert attribute: %w", err)
	}
	return id, nil
}

func (r *catalogRepository) InsertAttributeValue(ctx context.Context, tx pgx.Tx, value *model.AttributeValue) error {
	query := `
		INSERT INTO attribute_values (attribute_id, product_id, value, display_value)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, value.AttributeID, value.ProductID, value.Value, value.DisplayValue).Scan(&value.ID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", value.ProductID).
			Str("attribute", value.Name).
			Msg("failed to insert attribute value")
		return fmt.Errorf("failed to insert attribute value: %w", err)
	}
	return nil
}
