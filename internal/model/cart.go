package model

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Selection maps an attribute axis name to the chosen attribute value ID.
type Selection map[string]int64

// Equal reports whether both selections choose the same value on every axis.
// A nil selection equals an empty one.
func (s Selection) Equal(other Selection) bool {
	return maps.Equal(s, other)
}

// Clone returns an independent copy of s.
func (s Selection) Clone() Selection {
	if s == nil {
		return Selection{}
	}
	return maps.Clone(s)
}

// ValueIDs returns the selected value IDs ordered by axis name.
func (s Selection) ValueIDs() []int64 {
	axes := slices.Sorted(maps.Keys(s))
	ids := make([]int64, 0, len(axes))
	for _, axis := range axes {
		ids = append(ids, s[axis])
	}
	return ids
}

// Direction is a quantity adjustment direction.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// CartProduct is the product snapshot captured when a line is added.
type CartProduct struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	InStock        bool            `json:"inStock"`
	Image          string          `json:"image"`
	CurrencySymbol string          `json:"currencySymbol"`
	Price          decimal.Decimal `json:"price"`
}

// LineIdentity is the merge key of a cart line.
type LineIdentity struct {
	ProductID string    `json:"productId"`
	Text      Selection `json:"text"`
	Swatch    Selection `json:"swatch"`
}

// CartLine is one entry of a shopping cart.
type CartLine struct {
	Key              string           `json:"key"`
	Product          CartProduct      `json:"product"`
	TextAttributes   []AttributeValue `json:"textAttributes"`
	SwatchAttributes []AttributeValue `json:"swatchAttributes"`
	SelectedText     Selection        `json:"selectedText"`
	SelectedSwatch   Selection        `json:"selectedSwatch"`
	Quantity         int              `json:"quantity"`
}

// Identity returns the line's merge key.
func (l CartLine) Identity() LineIdentity {
	return LineIdentity{
		ProductID: l.Product.ID,
		Text:      l.SelectedText,
		Swatch:    l.SelectedSwatch,
	}
}

// Matches reports whether line l has the identity id.
func (id LineIdentity) Matches(l CartLine) bool {
	return l.Product.ID == id.ProductID &&
		l.SelectedText.Equal(id.Text) &&
		l.SelectedSwatch.Equal(id.Swatch)
}

// Subtotal returns price × quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return LineAmount(l.Product.Price, l.Quantity)
}

// AttributeValueIDs returns the selected text and swatch value IDs.
func (l CartLine) AttributeValueIDs() []int64 {
	ids := l.SelectedText.ValueIDs()
	return append(ids, l.SelectedSwatch.ValueIDs()...)
}

// AddToCartRequest is the payload for adding a product to a cart.
type AddToCartRequest struct {
	ProductID string    `json:"productId" validate:"required"`
	Category  string    `json:"category"`
	Text      Selection `json:"selectedText"`
	Swatch    Selection `json:"selectedSwatch"`
}

// AdjustQuantityRequest is the payload for changing a line's quantity.
type AdjustQuantityRequest struct {
	ProductID string    `json:"productId" validate:"required"`
	Text      Selection `json:"selectedText"`
	Swatch    Selection `json:"selectedSwatch"`
	Direction Direction `json:"direction" validate:"required,oneof=increase decrease"`
}
