package model

import "github.com/shopspring/decimal"

// CategoryAll is the selector that resolves products across every category.
const CategoryAll = "all"

// Category groups products in the catalogue.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Product represents a catalogue product.
// In list mode Images holds at most the first image and Description is empty.
type Product struct {
	ID             string          `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Brand          string          `json:"brand" db:"brand"`
	Category       string          `json:"category" db:"category_name"`
	InStock        bool            `json:"inStock" db:"in_stock"`
	Description    string          `json:"description,omitempty" db:"description"`
	Images         []string        `json:"images" db:"image_url"`
	Price          decimal.Decimal `json:"price" db:"price_amount"`
	CurrencyLabel  string          `json:"currencyLabel" db:"currency_label"`
	CurrencySymbol string          `json:"currencySymbol" db:"currency_symbol"`
}

// FirstImage returns the first gallery image or an empty string.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
