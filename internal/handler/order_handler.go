package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders service.OrderComposer
	logger zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderComposer, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderSubmission
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	orderID, err := h.orders.Submit(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "Order could not be saved, please try again", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.OrderResponse{OrderID: orderID})
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderIDStr := r.PathValue("id")
	if orderIDStr == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "order ID is required", h.logger)
		return
	}

	orderID, err := strconv.ParseInt(orderIDStr, 10, 64)
	if err != nil || orderID <= 0 {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidSubmission, "invalid order ID format", h.logger)
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve order", h.logger)
		return
	}

	if order == nil {
		writeServiceError(w, model.ErrOrderNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
