package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	carts  service.CartService
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/carts/{name} requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.carts.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// AddLine handles POST /api/carts/{name}/lines requests.
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	snap, err := h.carts.AddProduct(r.Context(), r.PathValue("name"), &req)
	if err != nil {
		writeServiceError(w, err, "failed to add product to cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// AdjustLine handles PATCH /api/carts/{name}/lines requests.
func (h *CartHandler) AdjustLine(w http.ResponseWriter, r *http.Request) {
	var req model.AdjustQuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	snap, err := h.carts.AdjustQuantity(r.Context(), r.PathValue("name"), &req)
	if err != nil {
		writeServiceError(w, err, "failed to update cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// Clear handles DELETE /api/carts/{name} requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	snap, err := h.carts.Clear(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, err, "failed to clear cart", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// Checkout handles POST /api/carts/{name}/checkout requests.
// Lines that failed are listed in the result and stay in the cart.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	result, err := h.carts.Checkout(r.Context(), name)
	if result == nil {
		writeServiceError(w, err, "failed to check out cart", h.logger)
		return
	}
	if err != nil {
		h.logger.Warn().Err(err).Str("cart", name).Int("failed", len(result.Failed)).Msg("checkout finished with failures")
	}

	status := http.StatusCreated
	if len(result.OrderIDs) == 0 {
		status = http.StatusUnprocessableEntity
	} else if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}

	writeJSON(w, status, result)
}
