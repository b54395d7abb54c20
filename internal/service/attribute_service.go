package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type attributeStrategy func(ctx context.Context, productID string) ([]model.AttributeValue, error)

// attributeResolver implements AttributeResolver.
type attributeResolver struct {
	attributeRepo repository.AttributeRepository
	kinds         map[model.AttributeKind]attributeStrategy
	logger        zerolog.Logger
}

// NewAttributeResolver creates a new attribute resolver.
func NewAttributeResolver(attributeRepo repository.AttributeRepository, logger zerolog.Logger) AttributeResolver {
	r := &attributeResolver{
		attributeRepo: attributeRepo,
		logger:        logger.With().Str("service", "attribute").Logger(),
	}
	r.kinds = map[model.AttributeKind]attributeStrategy{
		model.AttributeKindText:   r.byKind(model.AttributeKindText),
		model.AttributeKindSwatch: r.byKind(model.AttributeKindSwatch),
	}
	return r
}

func (r *attributeResolver) byKind(kind model.AttributeKind) attributeStrategy {
	return func(ctx context.Context, productID string) ([]model.AttributeValue, error) {
		return r.attributeRepo.ListByProduct(ctx, productID, kind)
	}
}

// Resolve returns the product's attribute values of one kind.
func (r *attributeResolver) Resolve(ctx context.Context, productID string, kind model.AttributeKind) ([]model.AttributeValue, error) {
	strategy, ok := r.kinds[kind]
	if !ok {
		kind = model.AttributeKindText
		strategy = r.kinds[kind]
	}

	values, err := strategy(ctx, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Str("kind", string(kind)).
			Msg("failed to resolve attributes")
		return nil, fmt.Errorf("failed to resolve %s attributes: %w", kind, err)
	}

	return values, nil
}

// ResolveAll fetches both kinds concurrently.
func (r *attributeResolver) ResolveAll(ctx context.Context, productID string) (*model.AttributeSet, error) {
	set := &model.AttributeSet{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		values, err := r.Resolve(gctx, productID, model.AttributeKindText)
		set.Text = values
		return err
	})
	g.Go(func() error {
		values, err := r.Resolve(gctx, productID, model.AttributeKindSwatch)
		set.Swatch = values
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return set, nil
}
