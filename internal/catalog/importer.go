package catalog

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Result counts what an import wrote.
type Result struct {
	Categories      int `json:"categories"`
	Products        int `json:"products"`
	AttributeValues int `json:"attributeValues"`
}

// Importer writes a catalogue document in a single transaction.
type Importer struct {
	repo    repository.CatalogRepository
	metrics *metrics.Collectors
	logger  zerolog.Logger
}

// NewImporter creates a new catalogue importer.
func NewImporter(repo repository.CatalogRepository, collectors *metrics.Collectors, logger zerolog.Logger) *Importer {
	return &Importer{
		repo:    repo,
		metrics: collectors,
		logger:  logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Import writes categories, products, prices, galleries and attributes.
// Nothing is written when any step fails; a catalogue whose categories
// already exist yields model.ErrCatalogAlreadyImported.
func (i *Importer) Import(ctx context.Context, doc *Document) (*Result, error) {
	if doc == nil {
		return nil, model.ErrInvalidCatalog
	}
	if err := doc.Validate(); err != nil {
		i.metrics.ObserveCatalogImport(metrics.OutcomeFailure, 0)
		return nil, err
	}

	result, err := i.importDocument(ctx, doc)
	if err != nil {
		outcome := metrics.OutcomeFailure
		if errors.Is(err, model.ErrCatalogAlreadyImported) {
			outcome = metrics.OutcomeDuplicate
		}
		i.metrics.ObserveCatalogImport(outcome, 0)
		return nil, err
	}

	i.metrics.ObserveCatalogImport(metrics.OutcomeSuccess, result.Products)
	i.logger.Info().
		Int("categories", result.Categories).
		Int("products", result.Products).
		Int("attribute_values", result.AttributeValues).
		Msg("catalogue imported successfully")

	return result, nil
}

func (i *Importer) importDocument(ctx context.Context, doc *Document) (result *Result, err error) {
	tx, err := i.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to import catalogue: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				i.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	result = &Result{}

	categoryIDs := make(map[string]int64, len(doc.Data.Categories))
	for _, c := range doc.Data.Categories {
		id, err := i.repo.InsertCategory(ctx, tx, c.Name)
		if err != nil {
			return nil, err
		}
		categoryIDs[c.Name] = id
		result.Categories++
	}

	type attributeKey struct {
		name string
		kind model.AttributeKind
	}
	attributeIDs := make(map[attributeKey]int64)

	for _, entry := range doc.Data.Products {
		product := entry.Product()

		if err := i.repo.InsertProduct(ctx, tx, product, categoryIDs[entry.Category]); err != nil {
			return nil, err
		}
		if len(entry.Prices) > 0 {
			if err := i.repo.InsertPrice(ctx, tx, product); err != nil {
				return nil, err
			}
		}
		if err := i.repo.InsertImages(ctx, tx, product.ID, entry.Gallery); err != nil {
			return nil, err
		}

		for _, attr := range entry.Attributes {
			key := attributeKey{name: attr.Name, kind: attr.Kind()}
			attributeID, ok := attributeIDs[key]
			if !ok {
				attributeID, err = i.repo.UpsertAttribute(ctx, tx, key.name, key.kind)
				if err != nil {
					return nil, err
				}
				attributeIDs[key] = attributeID
			}

			for _, item := range attr.Items {
				value := &model.AttributeValue{
					AttributeID:  attributeID,
					Name:         attr.Name,
					Kind:         key.kind,
					ProductID:    product.ID,
					Value:        item.Value,
					DisplayValue: item.DisplayValue,
				}
				if err := i.repo.InsertAttributeValue(ctx, tx, value); err != nil {
					return nil, err
				}
				result.AttributeValues++
			}
		}

		result.Products++
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit catalogue import: %w", err)
	}

	return result, nil
}
