package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the header row created for one submitted cart line.
type Order struct {
	ID           int64           `json:"id" db:"id"`
	SubmissionID *uuid.UUID      `json:"submissionId,omitempty" db:"submission_id"`
	TotalAmount  decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem is the product line of an order.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"orderId" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
}

// OrderItemAttribute links an order item to one selected attribute value.
type OrderItemAttribute struct {
	ID               int64 `json:"id" db:"id"`
	OrderItemID      int64 `json:"orderItemId" db:"order_item_id"`
	AttributeValueID int64 `json:"attributeValueId" db:"attribute_value_id"`
}

// OrderSubmission is the payload that creates an order for a single cart line.
type OrderSubmission struct {
	SubmissionID      *uuid.UUID      `json:"submission_id,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ProductID         string          `json:"product_id" validate:"required,max=255"`
	Quantity          int             `json:"quantity" validate:"gt=0"`
	Amount            decimal.Decimal `json:"amount"`
	AttributeValueIDs []int64         `json:"attribute_value_id" validate:"dive,gt=0"`
}

// SubmissionFromLine builds the submission payload for a cart line.
func SubmissionFromLine(line CartLine) OrderSubmission {
	return OrderSubmission{
		TotalAmount:       line.Subtotal(),
		ProductID:         line.Product.ID,
		Quantity:          line.Quantity,
		Amount:            line.Product.Price,
		AttributeValueIDs: line.AttributeValueIDs(),
	}
}

// OrderItemDetails is an order item with its selected attribute values.
type OrderItemDetails struct {
	OrderItem
	AttributeValueIDs []int64 `json:"attributeValueIds"`
}

// OrderDetails is an order with its items.
type OrderDetails struct {
	Order Order              `json:"order"`
	Items []OrderItemDetails `json:"items"`
}

// OrderResponse is returned after a submission.
type OrderResponse struct {
	OrderID int64 `json:"orderId"`
}

// CheckoutFailure describes a cart line that could not be submitted.
type CheckoutFailure struct {
	LineKey   string `json:"lineKey"`
	ProductID string `json:"productId"`
	Step      string `json:"step"`
	Message   string `json:"message"`
}

// CheckoutResult reports the outcome of submitting a whole cart.
type CheckoutResult struct {
	OrderIDs []int64           `json:"orderIds"`
	Failed   []CheckoutFailure `json:"failed,omitempty"`
}
