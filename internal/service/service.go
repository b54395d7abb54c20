package service

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/model"
)

// ProductResolver resolves products for a category selector.
type ProductResolver interface {
	// Resolve returns every product of the category when productID is empty,
	// or a single-element list with the product's details. An unknown
	// product yields an empty list.
	Resolve(ctx context.Context, category, productID string) ([]model.Product, error)

	// Categories lists the catalogue categories.
	Categories(ctx context.Context) ([]model.Category, error)

	// Refresh rebuilds the category strategy table from the database.
	Refresh(ctx context.Context) error
}

// AttributeResolver resolves the selectable attribute values of a product.
type AttributeResolver interface {
	// Resolve returns the product's values of one kind. Unknown kinds resolve as text.
	Resolve(ctx context.Context, productID string, kind model.AttributeKind) ([]model.AttributeValue, error)

	// ResolveAll returns the product's text and swatch values.
	ResolveAll(ctx context.Context, productID string) (*model.AttributeSet, error)
}

// CheckoutCart is the cart surface needed to submit it as orders.
type CheckoutCart interface {
	Lines() []model.CartLine
	Remove(ctx context.Context, identity model.LineIdentity) (cart.Snapshot, error)
}

// OrderComposer persists order submissions.
type OrderComposer interface {
	// Submit persists one order for a single cart line and returns its ID.
	Submit(ctx context.Context, sub *model.OrderSubmission) (int64, error)

	// Checkout submits every line of c as its own order and removes the
	// committed lines from the cart.
	Checkout(ctx context.Context, c CheckoutCart) (*model.CheckoutResult, error)

	// GetByID retrieves an order with its items. Returns nil when not found.
	GetByID(ctx context.Context, id int64) (*model.OrderDetails, error)
}

// CartService manages named carts.
type CartService interface {
	Get(ctx context.Context, name string) (*cart.Snapshot, error)
	AddProduct(ctx context.Context, name string, req *model.AddToCartRequest) (*cart.Snapshot, error)
	AdjustQuantity(ctx context.Context, name string, req *model.AdjustQuantityRequest) (*cart.Snapshot, error)
	Clear(ctx context.Context, name string) (*cart.Snapshot, error)
	Checkout(ctx context.Context, name string) (*model.CheckoutResult, error)
}
