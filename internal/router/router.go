package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Products *handler.ProductHandler
	Carts    *handler.CartHandler
	Orders   *handler.OrderHandler
}

// New creates a new HTTP router with all routes and middleware configured.
// gatherer serves /metrics; nil disables the endpoint.
func New(h Handlers, gatherer prometheus.Gatherer, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /api/categories", h.Products.Categories)
	mux.HandleFunc("GET /api/products", h.Products.List)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)
	mux.HandleFunc("GET /api/products/{id}/attributes", h.Products.Attributes)

	mux.HandleFunc("GET /api/carts/{name}", h.Carts.Get)
	mux.HandleFunc("DELETE /api/carts/{name}", h.Carts.Clear)
	mux.HandleFunc("POST /api/carts/{name}/lines", h.Carts.AddLine)
	mux.HandleFunc("PATCH /api/carts/{name}/lines", h.Carts.AdjustLine)
	mux.HandleFunc("POST /api/carts/{name}/checkout", h.Carts.Checkout)

	mux.HandleFunc("POST /api/orders", h.Orders.Create)
	mux.HandleFunc("GET /api/orders/{id}", h.Orders.GetByID)

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
