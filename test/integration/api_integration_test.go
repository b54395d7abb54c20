package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/cart"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	collectors := metrics.New(reg)

	// Initialize repositories
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	categoryRepo := repository.NewCategoryRepository(testDB.Pool, logger)
	attributeRepo := repository.NewAttributeRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	// Initialize services
	products := service.NewProductResolver(productRepo, categoryRepo, collectors, logger)
	require.NoError(t, products.Refresh(ctx))
	attributes := service.NewAttributeResolver(attributeRepo, logger)
	orders := service.NewOrderComposer(orderRepo, collectors, logger)

	carts := cart.NewRegistry(cart.NewMemoryStorage(), "cart:", cart.DefaultCapacity, logger)
	carts.OnChange(func(_ string, e cart.Event) { collectors.IncCartChange(string(e.Op)) })
	cartService := service.NewCartService(carts, products, attributes, orders, logger)

	// Create router
	return router.New(router.Handlers{
		Products: handler.NewProductHandler(products, attributes, logger),
		Carts:    handler.NewCartHandler(cartService, logger),
		Orders:   handler.NewOrderHandler(orders, logger),
	}, reg, testAPIKey, logger)
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestCatalogAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	SeedCatalog(t, testDB.Pool)
	server := setupTestServer(t, testDB)

	t.Run("Categories", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)

		categories := decodeBody[[]model.Category](t, w)
		require.Len(t, categories, 3)
		assert.Equal(t, "all", categories[0].Name)
	})

	t.Run("List by category shows only the first image", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/products?category=clothes", nil)
		require.Equal(t, http.StatusOK, w.Code)

		products := decodeBody[[]model.Product](t, w)
		require.Len(t, products, 2)
		for _, p := range products {
			assert.Equal(t, "clothes", p.Category)
			assert.Empty(t, p.Description)
			assert.LessOrEqual(t, len(p.Images), 1)
		}
	})

	t.Run("Unknown selector lists everything", func(t *testing.T) {
		all := decodeBody[[]model.Product](t, doRequest(t, server, http.MethodGet, "/api/products", nil))
		unknown := decodeBody[[]model.Product](t, doRequest(t, server, http.MethodGet, "/api/products?category=garden", nil))

		assert.Len(t, all, 4)
		assert.Equal(t, all, unknown)
	})

	t.Run("Product without images", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/products/apple-airtag", nil)
		require.Equal(t, http.StatusOK, w.Code)

		product := decodeBody[model.Product](t, w)
		assert.Empty(t, product.Images)
		assert.True(t, product.Price.Equal(decimal.RequireFromString("120.57")))
	})

	t.Run("Detail has ordered gallery and description", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/products/huarache-x-stussy-le?category=clothes", nil)
		require.Equal(t, http.StatusOK, w.Code)

		product := decodeBody[model.Product](t, w)
		assert.Equal(t, []string{"https://img/huarache-1.jpg", "https://img/huarache-2.jpg", "https://img/huarache-3.jpg"}, product.Images)
		assert.Equal(t, "<p>Great sneakers for everyday use!</p>", product.Description)
		assert.Equal(t, "$", product.CurrencySymbol)
	})

	t.Run("Detail outside its category is not found", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/products/ps-5?category=clothes", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Attributes by kind", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/products/ps-5/attributes?kind=swatch", nil)
		require.Equal(t, http.StatusOK, w.Code)

		values := decodeBody[[]model.AttributeValue](t, w)
		require.Len(t, values, 2)
		assert.Equal(t, "#44FF03", values[0].Value)
		assert.Equal(t, "Cyan", values[1].DisplayValue)

		// Unknown kinds resolve as text.
		w = doRequest(t, server, http.MethodGet, "/api/products/ps-5/attributes?kind=radio", nil)
		require.Equal(t, http.StatusOK, w.Code)
		text := decodeBody[[]model.AttributeValue](t, w)
		require.Len(t, text, 2)
		assert.Equal(t, "Capacity", text[0].Name)
	})
}

func TestCartCheckout_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	SeedCatalog(t, testDB.Pool)
	server := setupTestServer(t, testDB)

	capacity512 := AttributeValueID(t, testDB.Pool, "ps-5", "Capacity", "512G")
	capacity1T := AttributeValueID(t, testDB.Pool, "ps-5", "Capacity", "1T")
	green := AttributeValueID(t, testDB.Pool, "ps-5", "Color", "#44FF03")

	// Defaults pick the first value of every axis.
	w := doRequest(t, server, http.MethodPost, "/api/carts/web/lines", model.AddToCartRequest{ProductID: "ps-5"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decodeBody[cart.Snapshot](t, w)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, model.Selection{"Capacity": capacity512}, snap.Lines[0].SelectedText)
	assert.Equal(t, model.Selection{"Color": green}, snap.Lines[0].SelectedSwatch)

	// The same selection merges into the existing line.
	w = doRequest(t, server, http.MethodPost, "/api/carts/web/lines", model.AddToCartRequest{
		ProductID: "ps-5",
		Text:      model.Selection{"Capacity": capacity512},
		Swatch:    model.Selection{"Color": green},
	})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeBody[cart.Snapshot](t, w)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)

	// A different selection is a new line.
	w = doRequest(t, server, http.MethodPost, "/api/carts/web/lines", model.AddToCartRequest{
		ProductID: "ps-5",
		Text:      model.Selection{"Capacity": capacity1T},
	})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeBody[cart.Snapshot](t, w)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 3, snap.Count)
	assert.True(t, snap.Total.Equal(decimal.RequireFromString("2532.06")), "total %s", snap.Total)

	// Decreasing a quantity-one line removes it.
	w = doRequest(t, server, http.MethodPatch, "/api/carts/web/lines", model.AdjustQuantityRequest{
		ProductID: "ps-5",
		Text:      model.Selection{"Capacity": capacity1T},
		Swatch:    model.Selection{"Color": green},
		Direction: model.DirectionDecrease,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap = decodeBody[cart.Snapshot](t, w)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Count)

	// Selecting a value of another product is rejected.
	huarache40 := AttributeValueID(t, testDB.Pool, "huarache-x-stussy-le", "Size", "40")
	w = doRequest(t, server, http.MethodPost, "/api/carts/web/lines", model.AddToCartRequest{
		ProductID: "ps-5",
		Text:      model.Selection{"Capacity": huarache40},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Out of stock products cannot be added.
	w = doRequest(t, server, http.MethodPost, "/api/carts/web/lines", model.AddToCartRequest{ProductID: "jacket-canada-goosee"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Checkout submits one order per line and empties the cart.
	w = doRequest(t, server, http.MethodPost, "/api/carts/web/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decodeBody[model.CheckoutResult](t, w)
	require.Len(t, result.OrderIDs, 1)
	assert.Empty(t, result.Failed)

	w = doRequest(t, server, http.MethodGet, "/api/carts/web", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap = decodeBody[cart.Snapshot](t, w)
	assert.Empty(t, snap.Lines)
	assert.Equal(t, 0, snap.Count)

	// The order holds the line's quantity, price, total and selections.
	w = doRequest(t, server, http.MethodGet, fmt.Sprintf("/api/orders/%d", result.OrderIDs[0]), nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := decodeBody[model.OrderDetails](t, w)
	assert.True(t, details.Order.TotalAmount.Equal(decimal.RequireFromString("1688.04")))
	require.Len(t, details.Items, 1)
	assert.Equal(t, "ps-5", details.Items[0].ProductID)
	assert.Equal(t, 2, details.Items[0].Quantity)
	assert.True(t, details.Items[0].Amount.Equal(decimal.RequireFromString("844.02")))
	assert.ElementsMatch(t, []int64{capacity512, green}, details.Items[0].AttributeValueIDs)

	// An empty cart cannot be checked out.
	w = doRequest(t, server, http.MethodPost, "/api/carts/web/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	SeedCatalog(t, testDB.Pool)
	server := setupTestServer(t, testDB)

	size40 := AttributeValueID(t, testDB.Pool, "huarache-x-stussy-le", "Size", "40")

	t.Run("Submit and fetch", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/orders", map[string]any{
			"total_amount":       "289.38",
			"product_id":         "huarache-x-stussy-le",
			"quantity":           2,
			"amount":             "144.69",
			"attribute_value_id": []int64{size40},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decodeBody[model.OrderResponse](t, w)
		assert.Positive(t, resp.OrderID)

		w = doRequest(t, server, http.MethodGet, fmt.Sprintf("/api/orders/%d", resp.OrderID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		details := decodeBody[model.OrderDetails](t, w)
		require.Len(t, details.Items, 1)
		assert.Equal(t, []int64{size40}, details.Items[0].AttributeValueIDs)
	})

	t.Run("Repeated submission id returns the same order", func(t *testing.T) {
		body := map[string]any{
			"submission_id":      "5d2c1f0a-8b7e-4c3d-9a6f-1e2d3c4b5a69",
			"total_amount":       "144.69",
			"product_id":         "huarache-x-stussy-le",
			"quantity":           1,
			"amount":             "144.69",
			"attribute_value_id": []int64{size40},
		}

		first := decodeBody[model.OrderResponse](t, doRequest(t, server, http.MethodPost, "/api/orders", body))
		before := CountRows(t, testDB.Pool, "orders")
		second := decodeBody[model.OrderResponse](t, doRequest(t, server, http.MethodPost, "/api/orders", body))

		assert.Equal(t, first.OrderID, second.OrderID)
		assert.Equal(t, before, CountRows(t, testDB.Pool, "orders"))
	})

	t.Run("Amount mismatch", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/orders", map[string]any{
			"total_amount": "100.00",
			"product_id":   "huarache-x-stussy-le",
			"quantity":     2,
			"amount":       "144.69",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, model.ErrCodeAmountMismatch, decodeBody[model.ErrorResponse](t, w).Error)
	})

	t.Run("Invalid quantity", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/orders", map[string]any{
			"total_amount": "0",
			"product_id":   "huarache-x-stussy-le",
			"quantity":     0,
			"amount":       "144.69",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeInvalidQuantity, decodeBody[model.ErrorResponse](t, w).Error)
	})

	t.Run("Unknown order", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/orders/987654", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
