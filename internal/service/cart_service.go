package service

import (
	"context"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// cartService implements CartService on top of a cart registry.
type cartService struct {
	carts      *cart.Registry
	products   ProductResolver
	attributes AttributeResolver
	orders     OrderComposer
	logger     zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	carts *cart.Registry,
	products ProductResolver,
	attributes AttributeResolver,
	orders OrderComposer,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		carts:      carts,
		products:   products,
		attributes: attributes,
		orders:     orders,
		logger:     logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the stored state of a cart, picking up expiry and writes
// from other instances.
func (s *cartService) Get(ctx context.Context, name string) (*cart.Snapshot, error) {
	store, err := s.carts.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := store.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh cart: %w", err)
	}
	snap := store.Snapshot()
	return &snap, nil
}

// AddProduct resolves the product and its attributes, applies default
// selections for axes the request leaves out and adds one unit.
func (s *cartService) AddProduct(ctx context.Context, name string, req *model.AddToCartRequest) (*cart.Snapshot, error) {
	if err := validateStruct(req, model.ErrInvalidSelection); err != nil {
		return nil, err
	}

	store, err := s.carts.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = model.CategoryAll
	}

	products, err := s.products.Resolve(ctx, category, req.ProductID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		s.logger.Debug().Str("product_id", req.ProductID).Msg("product not found")
		return nil, model.ErrProductNotFound
	}
	product := products[0]
	if !product.InStock {
		return nil, model.ErrOutOfStock
	}

	attrs, err := s.attributes.ResolveAll(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	text, err := resolveSelection(req.Text, attrs.Text)
	if err != nil {
		return nil, err
	}
	swatch, err := resolveSelection(req.Swatch, attrs.Swatch)
	if err != nil {
		return nil, err
	}

	snap, err := store.Add(ctx, product, attrs.Text, attrs.Swatch, text, swatch)
	if err != nil {
		s.logger.Error().Err(err).Str("cart", name).Str("product_id", product.ID).Msg("failed to add product")
		return nil, fmt.Errorf("failed to add product to cart: %w", err)
	}

	return &snap, nil
}

// AdjustQuantity increments or decrements one line.
func (s *cartService) AdjustQuantity(ctx context.Context, name string, req *model.AdjustQuantityRequest) (*cart.Snapshot, error) {
	if req != nil && req.Direction != model.DirectionIncrease && req.Direction != model.DirectionDecrease {
		return nil, model.ErrInvalidDirection
	}
	if err := validateStruct(req, model.ErrInvalidSelection); err != nil {
		return nil, err
	}

	store, err := s.carts.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	identity := model.LineIdentity{ProductID: req.ProductID, Text: req.Text, Swatch: req.Swatch}
	snap, err := store.AdjustQuantity(ctx, identity, req.Direction)
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// Clear empties a cart.
func (s *cartService) Clear(ctx context.Context, name string) (*cart.Snapshot, error) {
	store, err := s.carts.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	snap, err := store.Clear(ctx)
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// Checkout submits the cart's lines as orders.
func (s *cartService) Checkout(ctx context.Context, name string) (*model.CheckoutResult, error) {
	store, err := s.carts.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	return s.orders.Checkout(ctx, store)
}

// resolveSelection checks every requested value against the candidates and
// selects the first candidate of each axis the request leaves out.
func resolveSelection(requested model.Selection, candidates []model.AttributeValue) (model.Selection, error) {
	selection := model.Selection{}

	for _, v := range candidates {
		if _, ok := selection[v.Name]; !ok {
			selection[v.Name] = v.ID
		}
	}

	for axis, id := range requested {
		if _, ok := selection[axis]; !ok {
			return nil, fmt.Errorf("%w: unknown attribute %q", model.ErrInvalidSelection, axis)
		}
		found := false
		for _, v := range candidates {
			if v.Name == axis && v.ID == id {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: value %d is not offered for %q", model.ErrInvalidSelection, id, axis)
		}
		selection[axis] = id
	}

	return selection, nil
}
