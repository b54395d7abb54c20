package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the schema migrated.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedCatalog inserts two categories with a handful of products.
func seedCatalog(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	seed := `
		INSERT INTO categories (name) VALUES ('clothes'), ('tech');

		INSERT INTO products (id, name, description, in_stock, brand, category_id) VALUES
			('huarache-x-stussy-le', 'Nike Air Huarache Le', '<p>Great sneakers for everyday use!</p>', 1, 'Nike x Stussy',
				(SELECT id FROM categories WHERE name = 'clothes')),
			('jacket-canada-goosee', 'Jacket', '<p>Awesome winter jacket</p>', 0, 'Canada Goose',
				(SELECT id FROM categories WHERE name = 'clothes')),
			('ps-5', 'PlayStation 5', '<p>A good gaming console.</p>', 1, 'Sony',
				(SELECT id FROM categories WHERE name = 'tech')),
			('apple-airtag', 'AirTag', '<p>Lose your knack for losing things.</p>', 1, 'Apple',
				(SELECT id FROM categories WHERE name = 'tech'));

		INSERT INTO product_images (product_id, url, position) VALUES
			('huarache-x-stussy-le', 'https://img.example/huarache-2.jpg', 1),
			('huarache-x-stussy-le', 'https://img.example/huarache-1.jpg', 0),
			('huarache-x-stussy-le', 'https://img.example/huarache-3.jpg', 2),
			('jacket-canada-goosee', 'https://img.example/jacket-1.jpg', 0),
			('ps-5', 'https://img.example/ps5-1.jpg', 0),
			('ps-5', 'https://img.example/ps5-2.jpg', 1);

		INSERT INTO prices (product_id, amount, currency_label, currency_symbol) VALUES
			('huarache-x-stussy-le', 144.69, 'USD', '$'),
			('jacket-canada-goosee', 518.47, 'USD', '$'),
			('ps-5', 844.02, 'USD', '$'),
			('apple-airtag', 120.57, 'USD', '$');

		INSERT INTO attributes (name, kind) VALUES
			('Size', 'text'),
			('Capacity', 'text'),
			('Color', 'swatch');

		INSERT INTO attribute_values (attribute_id, product_id, value, display_value) VALUES
			((SELECT id FROM attributes WHERE name = 'Size'), 'huarache-x-stussy-le', '40', '40'),
			((SELECT id FROM attributes WHERE name = 'Size'), 'huarache-x-stussy-le', '41', '41'),
			((SELECT id FROM attributes WHERE name = 'Color'), 'ps-5', '#44FF03', 'Green'),
			((SELECT id FROM attributes WHERE name = 'Color'), 'ps-5', '#03FFF7', 'Cyan'),
			((SELECT id FROM attributes WHERE name = 'Capacity'), 'ps-5', '512G', '512G'),
			((SELECT id FROM attributes WHERE name = 'Capacity'), 'ps-5', '1T', '1T');
	`

	_, err := pool.Exec(ctx, seed)
	require.NoError(t, err)
}

// attributeValueID looks up a seeded attribute value by product and display value.
func attributeValueID(t *testing.T, pool *pgxpool.Pool, productID, displayValue string) int64 {
	var id int64
	err := pool.QueryRow(context.Background(),
		`SELECT id FROM attribute_values WHERE product_id = $1 AND display_value = $2`,
		productID, displayValue,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
