// Package catalog loads catalogue documents and imports them into the database.
package catalog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// Document is the catalogue file layout.
type Document struct {
	Data Data `json:"data"`
}

// Data holds the catalogue content.
type Data struct {
	Categories []CategoryEntry `json:"categories"`
	Products   []ProductEntry  `json:"products"`
}

type CategoryEntry struct {
	Name string `json:"name"`
}

type ProductEntry struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	InStock     bool             `json:"inStock"`
	Gallery     []string         `json:"gallery"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Attributes  []AttributeEntry `json:"attributes"`
	Prices      []PriceEntry     `json:"prices"`
	Brand       string           `json:"brand"`
}

type AttributeEntry struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Items []ItemEntry `json:"items"`
}

type ItemEntry struct {
	DisplayValue string `json:"displayValue"`
	Value        string `json:"value"`
	ID           string `json:"id"`
}

type PriceEntry struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency CurrencyEntry   `json:"currency"`
}

type CurrencyEntry struct {
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

// Loader defines the interface for loading catalogue files.
type Loader interface {
	// Load reads a catalogue document. Paths ending in .gz are gunzipped.
	Load(ctx context.Context, path string) (*Document, error)
}

// Kind maps the attribute type to a known kind, defaulting to text.
func (a AttributeEntry) Kind() model.AttributeKind {
	kind := model.AttributeKind(a.Type)
	if !kind.Valid() {
		return model.AttributeKindText
	}
	return kind
}

// Product converts the entry to a product. The first listed price is used.
func (p ProductEntry) Product() model.Product {
	product := model.Product{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		InStock:     p.InStock,
		Description: p.Description,
		Images:      p.Gallery,
	}
	if len(p.Prices) > 0 {
		product.Price = model.RoundAmount(p.Prices[0].Amount)
		product.CurrencyLabel = p.Prices[0].Currency.Label
		product.CurrencySymbol = p.Prices[0].Currency.Symbol
	}
	return product
}

// Validate checks that every product has an id, a known category and
// non-negative prices.
func (d *Document) Validate() error {
	categories := make(map[string]bool, len(d.Data.Categories))
	for _, c := range d.Data.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category without name", model.ErrInvalidCatalog)
		}
		if categories[c.Name] {
			return fmt.Errorf("%w: duplicate category %q", model.ErrInvalidCatalog, c.Name)
		}
		categories[c.Name] = true
	}

	seen := make(map[string]bool, len(d.Data.Products))
	for _, p := range d.Data.Products {
		if p.ID == "" {
			return fmt.Errorf("%w: product without id", model.ErrInvalidCatalog)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate product %q", model.ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = true
		if !categories[p.Category] {
			return fmt.Errorf("%w: product %q has unknown category %q", model.ErrInvalidCatalog, p.ID, p.Category)
		}
		for _, price := range p.Prices {
			if price.Amount.IsNegative() {
				return fmt.Errorf("%w: product %q has a negative price", model.ErrInvalidCatalog, p.ID)
			}
		}
	}

	return nil
}

// decode reads a document from r, gunzipping it first when compressed.
func decode(r io.Reader, compressed bool) (*Document, error) {
	if compressed {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidCatalog, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}
