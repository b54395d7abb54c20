package integration

import (
	"context"
	"testing"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and
// the migrated schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Config:    dbConfig,
	}
}

func usd(amount string) []catalog.PriceEntry {
	return []catalog.PriceEntry{
		{Amount: decimal.RequireFromString(amount), Currency: catalog.CurrencyEntry{Label: "USD", Symbol: "$"}},
	}
}

// CatalogFixture returns the catalogue imported by SeedCatalog.
func CatalogFixture() *catalog.Document {
	return &catalog.Document{Data: catalog.Data{
		Categories: []catalog.CategoryEntry{{Name: "all"}, {Name: "clothes"}, {Name: "tech"}},
		Products: []catalog.ProductEntry{
			{
				ID:          "huarache-x-stussy-le",
				Name:        "Nike Air Huarache Le",
				InStock:     true,
				Gallery:     []string{"https://img/huarache-1.jpg", "https://img/huarache-2.jpg", "https://img/huarache-3.jpg"},
				Description: "<p>Great sneakers for everyday use!</p>",
				Category:    "clothes",
				Attributes: []catalog.AttributeEntry{{
					ID: "Size", Name: "Size", Type: "text",
					Items: []catalog.ItemEntry{
						{ID: "40", Value: "40", DisplayValue: "40"},
						{ID: "41", Value: "41", DisplayValue: "41"},
					},
				}},
				Prices: usd("144.69"),
				Brand:  "Nike x Stussy",
			},
			{
				ID:          "jacket-canada-goosee",
				Name:        "Jacket",
				InStock:     false,
				Gallery:     []string{"https://img/jacket-1.png"},
				Description: "<p>Awesome winter jacket</p>",
				Category:    "clothes",
				Prices:      usd("518.47"),
				Brand:       "Canada Goose",
			},
			{
				ID:          "ps-5",
				Name:        "PlayStation 5",
				InStock:     true,
				Gallery:     []string{"https://img/ps5-1.png", "https://img/ps5-2.png"},
				Description: "<p>A good gaming console.</p>",
				Category:    "tech",
				Attributes: []catalog.AttributeEntry{
					{
						ID: "Color", Name: "Color", Type: "swatch",
						Items: []catalog.ItemEntry{
							{ID: "Green", Value: "#44FF03", DisplayValue: "Green"},
							{ID: "Cyan", Value: "#03FFF7", DisplayValue: "Cyan"},
						},
					},
					{
						ID: "Capacity", Name: "Capacity", Type: "text",
						Items: []catalog.ItemEntry{
							{ID: "512G", Value: "512G", DisplayValue: "512G"},
							{ID: "1T", Value: "1T", DisplayValue: "1T"},
						},
					},
				},
				Prices: usd("844.02"),
				Brand:  "Sony",
			},
			{
				ID:       "apple-airtag",
				Name:     "AirTag",
				InStock:  true,
				Gallery:  []string{},
				Category: "tech",
				Prices:   usd("120.57"),
				Brand:    "Apple",
			},
		},
	}}
}

// SeedCatalog imports CatalogFixture into the database.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	logger := zerolog.Nop()
	importer := catalog.NewImporter(repository.NewCatalogRepository(pool, logger), nil, logger)
	if _, err := importer.Import(context.Background(), CatalogFixture()); err != nil {
		t.Fatalf("failed to seed catalogue: %v", err)
	}
}

// AttributeValueID returns the ID of a product's attribute value.
func AttributeValueID(t *testing.T, pool *pgxpool.Pool, productID, attribute, value string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(), `
		SELECT av.id
		FROM attribute_values av
		JOIN attributes a ON a.id = av.attribute_id
		WHERE av.product_id = $1 AND a.name = $2 AND av.value = $3`,
		productID, attribute, value,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to find attribute value %s/%s=%s: %v", productID, attribute, value, err)
	}
	return id
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// CleanupOrders removes every order, keeping the catalogue.
func CleanupOrders(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_item_attribute_values", "order_items", "orders"}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
