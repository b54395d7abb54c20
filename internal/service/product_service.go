package service

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// categoryStrategy resolves products for one category selector.
type categoryStrategy struct {
	list   func(ctx context.Context) ([]model.Product, error)
	detail func(ctx context.Context, id string) (*model.Product, error)
}

// productResolver implements ProductResolver.
type productResolver struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	metrics      *metrics.Collectors
	logger       zerolog.Logger

	mu         sync.RWMutex
	strategies map[string]categoryStrategy
}

// NewProductResolver creates a product resolver knowing only the "all"
// selector. Call Refresh to load the category strategies.
func NewProductResolver(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	collectors *metrics.Collectors,
	logger zerolog.Logger,
) ProductResolver {
	r := &productResolver{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		metrics:      collectors,
		logger:       logger.With().Str("service", "product").Logger(),
	}
	r.strategies = map[string]categoryStrategy{model.CategoryAll: r.allStrategy()}
	return r
}

func (r *productResolver) allStrategy() categoryStrategy {
	return categoryStrategy{
		list:   r.productRepo.List,
		detail: r.productRepo.GetDetail,
	}
}

func (r *productResolver) categoryStrategy(name string) categoryStrategy {
	return categoryStrategy{
		list: func(ctx context.Context) ([]model.Product, error) {
			return r.productRepo.ListByCategory(ctx, name)
		},
		detail: func(ctx context.Context, id string) (*model.Product, error) {
			return r.productRepo.GetDetailInCategory(ctx, id, name)
		},
	}
}

// Refresh rebuilds the strategy table from the categories in the database.
func (r *productResolver) Refresh(ctx context.Context) error {
	categories, err := r.categoryRepo.List(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load categories")
		return fmt.Errorf("failed to refresh categories: %w", err)
	}

	strategies := make(map[string]categoryStrategy, len(categories)+1)
	for _, c := range categories {
		strategies[c.Name] = r.categoryStrategy(c.Name)
	}
	// "all" always resolves across every category, even if a category shares the name.
	strategies[model.CategoryAll] = r.allStrategy()

	r.mu.Lock()
	r.strategies = strategies
	r.mu.Unlock()

	r.logger.Info().Int("categories", len(categories)).Msg("product strategies refreshed")

	return nil
}

// lookup returns the strategy for a selector, falling back to "all".
func (r *productResolver) lookup(category string) (string, categoryStrategy) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.strategies[category]; ok {
		return category, s
	}
	return model.CategoryAll, r.strategies[model.CategoryAll]
}

// Resolve returns products in list mode or a single product in detail mode.
func (r *productResolver) Resolve(ctx context.Context, category, productID string) ([]model.Product, error) {
	selector, strategy := r.lookup(category)

	if productID == "" {
		r.metrics.IncResolverLookup("list", selector)

		products, err := strategy.list(ctx)
		if err != nil {
			r.logger.Error().Err(err).Str("category", selector).Msg("failed to list products")
			return nil, fmt.Errorf("failed to list products: %w", err)
		}

		r.logger.Debug().
			Str("category", selector).
			Int("count", len(products)).
			Msg("resolved product list")

		return products, nil
	}

	r.metrics.IncResolverLookup("detail", selector)

	product, err := strategy.detail(ctx, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category", selector).
			Str("product_id", productID).
			Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		r.logger.Debug().Str("product_id", productID).Msg("product not found")
		return []model.Product{}, nil
	}

	return []model.Product{*product}, nil
}

// Categories lists the catalogue categories.
func (r *productResolver) Categories(ctx context.Context) ([]model.Category, error) {
	categories, err := r.categoryRepo.List(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
