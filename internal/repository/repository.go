package repository

import (
	"context"
	"errors"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicateSubmission is returned by CreateOrder when an order with the
// same submission id was already recorded.
var ErrDuplicateSubmission = errors.New("order submission already recorded")

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves every product in list shape (first image only, no description).
	List(ctx context.Context) ([]model.Product, error)

	// ListByCategory retrieves the products of one category in list shape.
	ListByCategory(ctx context.Context, category string) ([]model.Product, error)

	// GetDetail retrieves a single product with its full gallery and description.
	// Returns nil when the product does not exist.
	GetDetail(ctx context.Context, id string) (*model.Product, error)

	// GetDetailInCategory is GetDetail restricted to products of the given category.
	GetDetailInCategory(ctx context.Context, id, category string) (*model.Product, error)
}

// AttributeRepository defines the interface for attribute value lookups.
type AttributeRepository interface {
	// ListByProduct retrieves the values of one kind offered by a product,
	// ordered by attribute name then value id.
	ListByProduct(ctx context.Context, productID string, kind model.AttributeKind) ([]model.AttributeValue, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// List retrieves all categories in insertion order.
	List(ctx context.Context) ([]model.Category, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction and sets
	// its generated ID and creation time. Returns ErrDuplicateSubmission when
	// the submission id is already taken.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItem inserts an order item within the provided transaction
	// and sets its generated ID.
	CreateOrderItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error

	// CreateOrderItemAttributes links an order item to the selected attribute values.
	CreateOrderItemAttributes(ctx context.Context, tx pgx.Tx, orderItemID int64, attributeValueIDs []int64) error

	// FindBySubmissionID returns the order recorded for a submission id, or nil.
	FindBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*model.Order, error)

	// GetByID retrieves an order with its items and their attribute values.
	// Returns nil when the order does not exist.
	GetByID(ctx context.Context, id int64) (*model.OrderDetails, error)
}

// CatalogRepository defines the write operations used by the catalogue importer.
// All writes run inside the caller's transaction.
type CatalogRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// InsertCategory inserts a category and returns its ID.
	// Returns model.ErrCatalogAlreadyImported when the category already exists.
	InsertCategory(ctx context.Context, tx pgx.Tx, name string) (int64, error)

	// InsertProduct inserts a product row.
	InsertProduct(ctx context.Context, tx pgx.Tx, product model.Product, categoryID int64) error

	// InsertPrice inserts the product's price and currency.
	InsertPrice(ctx context.Context, tx pgx.Tx, product model.Product) error

	// InsertImages inserts the product gallery preserving order.
	InsertImages(ctx context.Context, tx pgx.Tx, productID string, urls []string) error

	// UpsertAttribute returns the ID of the attribute definition with the
	// given name and kind, creating it if needed.
	UpsertAttribute(ctx context.Context, tx pgx.Tx, name string, kind model.AttributeKind) (int64, error)

	// InsertAttributeValue inserts a product's attribute value and sets its ID.
	InsertAttributeValue(ctx context.Context, tx pgx.Tx, value *model.AttributeValue) error
}
