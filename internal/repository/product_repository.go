package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	productPriceJoin = `
		JOIN categories c ON c.id = p.category_id
		LEFT JOIN LATERAL (
			SELECT amount, currency_label, currency_symbol
			FROM prices
			WHERE product_id = p.id
			ORDER BY id
			LIMIT 1
		) pr ON TRUE
	`

	productListSelect = `
		SELECT p.id, p.name, p.brand, c.name, p.in_stock,
			COALESCE((
				SELECT url FROM product_images i
				WHERE i.product_id = p.id
				ORDER BY i.position, i.id
				LIMIT 1
			), ''),
			COALESCE(pr.amount, 0),
			COALESCE(pr.currency_label, ''),
			COALESCE(pr.currency_symbol, '')
		FROM products p
	` + productPriceJoin

	productDetailSelect = `
		SELECT p.id, p.name, p.brand, c.name, p.in_stock, p.description,
			ARRAY(
				SELECT url FROM product_images i
				WHERE i.product_id = p.id
				ORDER BY i.position, i.id
			),
			COALESCE(pr.amount, 0),
			COALESCE(pr.currency_label, ''),
			COALESCE(pr.currency_symbol, '')
		FROM products p
	` + productPriceJoin
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// List retrieves every product in list shape.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	query := productListSelect + ` ORDER BY p.name, p.id`
	return r.queryList(ctx, query)
}

// ListByCategory retrieves the products of one category in list shape.
func (r *productRepository) ListByCategory(ctx context.Context, category string) ([]model.Product, error) {
	query := productListSelect + ` WHERE c.name = $1 ORDER BY p.name, p.id`
	return r.queryList(ctx, query, category)
}

func (r *productRepository) queryList(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			p       model.Product
			inStock int16
			image   string
		)
		err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &inStock, &image,
			&p.Price, &p.CurrencyLabel, &p.CurrencySymbol)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.InStock = inStock == 1
		p.Images = []string{}
		if image != "" {
			p.Images = append(p.Images, image)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetDetail retrieves a single product with its full gallery and description.
func (r *productRepository) GetDetail(ctx context.Context, id string) (*model.Product, error) {
	query := productDetailSelect + ` WHERE p.id = $1`
	return r.queryDetail(ctx, id, query, id)
}

// GetDetailInCategory retrieves a product only if it belongs to category.
func (r *productRepository) GetDetailInCategory(ctx context.Context, id, category string) (*model.Product, error) {
	query := productDetailSelect + ` WHERE p.id = $1 AND c.name = $2`
	return r.queryDetail(ctx, id, query, id, category)
}

func (r *productRepository) queryDetail(ctx context.Context, id, query string, args ...any) (*model.Product, error) {
	var (
		p       model.Product
		inStock int16
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &inStock,
		&p.Description, &p.Images, &p.Price, &p.CurrencyLabel, &p.CurrencySymbol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	p.InStock = inStock == 1
	if p.Images == nil {
		p.Images = []string{}
	}

	return &p, nil
}
