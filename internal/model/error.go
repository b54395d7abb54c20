package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeMissingField           = "MISSING_FIELD"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeInvalidSubmission      = "INVALID_SUBMISSION"
	ErrCodeAmountMismatch         = "AMOUNT_MISMATCH"
	ErrCodeMissingOrderID         = "MISSING_ORDER_ID"
	ErrCodeMissingOrderItemID     = "MISSING_ORDER_ITEM_ID"
	ErrCodeCartLineNotFound       = "CART_LINE_NOT_FOUND"
	ErrCodeEmptyCart              = "EMPTY_CART"
	ErrCodeOutOfStock             = "OUT_OF_STOCK"
	ErrCodeInvalidDirection       = "INVALID_DIRECTION"
	ErrCodeInvalidSelection       = "INVALID_SELECTION"
	ErrCodeInvalidCartName        = "INVALID_CART_NAME"
	ErrCodeCatalogAlreadyImported = "CATALOG_ALREADY_IMPORTED"
	ErrCodeInvalidCatalog         = "INVALID_CATALOG"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound        = NewDomainError(ErrCodeProductNotFound, "No such product")
	ErrOrderNotFound          = NewDomainError(ErrCodeOrderNotFound, "No such order")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidSubmission      = NewDomainError(ErrCodeInvalidSubmission, "Order submission is invalid")
	ErrAmountMismatch         = NewDomainError(ErrCodeAmountMismatch, "Total amount must equal amount multiplied by quantity")
	ErrMissingOrderID         = NewDomainError(ErrCodeMissingOrderID, "Order must be saved before its items")
	ErrMissingOrderItemID     = NewDomainError(ErrCodeMissingOrderItemID, "Order item must be saved before its attributes")
	ErrCartLineNotFound       = NewDomainError(ErrCodeCartLineNotFound, "Cart line not found")
	ErrEmptyCart              = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrOutOfStock             = NewDomainError(ErrCodeOutOfStock, "Product is out of stock")
	ErrInvalidDirection       = NewDomainError(ErrCodeInvalidDirection, "Direction must be increase or decrease")
	ErrInvalidSelection       = NewDomainError(ErrCodeInvalidSelection, "Selected attribute value does not belong to the product")
	ErrInvalidCartName        = NewDomainError(ErrCodeInvalidCartName, "Cart name is invalid")
	ErrCatalogAlreadyImported = NewDomainError(ErrCodeCatalogAlreadyImported, "The catalogue was already imported")
	ErrInvalidCatalog         = NewDomainError(ErrCodeInvalidCatalog, "Catalogue document is invalid")
)
