package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// attributeRepository implements the AttributeRepository interface using PostgreSQL.
type attributeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAttributeRepository creates a new PostgreSQL-backed attribute repository.
func NewAttributeRepository(pool *pgxpool.Pool, logger zerolog.Logger) AttributeRepository {
	return &attributeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "attribute").Logger(),
	}
}

// ListByProduct retrieves the attribute values of one kind offered by a product.
func (r *attributeRepository) ListByProduct(ctx context.Context, productID string, kind model.AttributeKind) ([]model.AttributeValue, error) {
	query := `
		SELECT av.id, a.id, a.name, a.kind, av.product_id, av.value, av.display_value
		FROM attribute_values av
		JOIN attributes a ON a.id = av.attribute_id
		WHERE av.product_id = $1 AND a.kind = $2
		ORDER BY a.name, av.id
	`

	rows, err := r.pool.Query(ctx, query, productID, string(kind))
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Str("kind", string(kind)).
			Msg("failed to query attribute values")
		return nil, fmt.Errorf("failed to query attribute values: %w", err)
	}
	defer rows.Close()

	values := []model.AttributeValue{}
	for rows.Next() {
		var (
			v    model.AttributeValue
			kind string
		)
		err := rows.Scan(&v.ID, &v.AttributeID, &v.Name, &kind, &v.ProductID, &v.Value, &v.DisplayValue)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan attribute value row")
			return nil, fmt.Errorf("failed to scan attribute value: %w", err)
		}
		v.Kind = model.AttributeKind(kind)
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating attribute value rows")
		return nil, fmt.Errorf("error iterating attribute values: %w", err)
	}

	return values, nil
}
