package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	products   service.ProductResolver
	attributes service.AttributeResolver
	logger     zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(products service.ProductResolver, attributes service.AttributeResolver, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products:   products,
		attributes: attributes,
		logger:     logger.With().Str("handler", "product").Logger(),
	}
}

// Categories handles GET /api/categories requests.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to retrieve categories", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// List handles GET /api/products?category={selector} requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Resolve(r.Context(), categoryParam(r), "")
	if err != nil {
		writeServiceError(w, err, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}?category={selector} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return
	}

	products, err := h.products.Resolve(r.Context(), categoryParam(r), productID)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve product", h.logger)
		return
	}

	if len(products) == 0 {
		writeServiceError(w, model.ErrProductNotFound, "product not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products[0])
}

// Attributes handles GET /api/products/{id}/attributes?kind=text|swatch requests.
// Without a kind both text and swatch values are returned.
func (h *ProductHandler) Attributes(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		set, err := h.attributes.ResolveAll(r.Context(), productID)
		if err != nil {
			writeServiceError(w, err, "failed to retrieve attributes", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, set)
		return
	}

	values, err := h.attributes.Resolve(r.Context(), productID, model.AttributeKind(kind))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve attributes", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, values)
}

func categoryParam(r *http.Request) string {
	category := r.URL.Query().Get("category")
	if category == "" {
		return model.CategoryAll
	}
	return category
}
