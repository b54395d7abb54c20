package model

// AttributeKind is the variant axis kind of an attribute definition.
type AttributeKind string

const (
	AttributeKindText   AttributeKind = "text"
	AttributeKindSwatch AttributeKind = "swatch"
)

// Valid reports whether k is a recognised kind.
func (k AttributeKind) Valid() bool {
	return k == AttributeKindText || k == AttributeKindSwatch
}

// AttributeValue is one selectable option of a product along an attribute axis.
// Value holds the raw value (a hex colour for swatches), DisplayValue the label.
type AttributeValue struct {
	ID           int64         `json:"id" db:"id"`
	AttributeID  int64         `json:"attributeId" db:"attribute_id"`
	Name         string        `json:"name" db:"name"`
	Kind         AttributeKind `json:"kind" db:"kind"`
	ProductID    string        `json:"productId" db:"product_id"`
	Value        string        `json:"value" db:"value"`
	DisplayValue string        `json:"displayValue" db:"display_value"`
}

// AttributeSet holds the candidate values of a product split by kind.
type AttributeSet struct {
	Text   []AttributeValue `json:"text"`
	Swatch []AttributeValue `json:"swatch"`
}
