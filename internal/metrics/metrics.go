package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Outcome labels.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDuplicate = "duplicate"
)

// Collectors records storefront metrics. A nil *Collectors is a no-op.
type Collectors struct {
	orderSubmissions *prometheus.CounterVec
	submitDuration   prometheus.Histogram
	cartChanges      *prometheus.CounterVec
	catalogImports   *prometheus.CounterVec
	catalogProducts  prometheus.Counter
	resolverLookups  *prometheus.CounterVec
}

// New registers the storefront collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		return &Collectors{}
	}
	orderSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_submissions_total",
		Help:      "Order submissions by outcome and failing step.",
	}, []string{"outcome", "step"})
	submitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_submit_duration_seconds",
		Help:      "Duration of a single order submission.",
		Buckets:   prometheus.DefBuckets,
	})
	cartChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_changes_total",
		Help:      "Cart mutations by operation.",
	}, []string{"op"})
	catalogImports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_imports_total",
		Help:      "Catalogue imports by outcome.",
	}, []string{"outcome"})
	catalogProducts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_imported_products_total",
		Help:      "Products written by catalogue imports.",
	})
	resolverLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_resolver_lookups_total",
		Help:      "Product resolver lookups by mode and strategy.",
	}, []string{"mode", "strategy"})
	reg.MustRegister(orderSubmissions, submitDuration, cartChanges, catalogImports, catalogProducts, resolverLookups)
	return &Collectors{
		orderSubmissions: orderSubmissions,
		submitDuration:   submitDuration,
		cartChanges:      cartChanges,
		catalogImports:   catalogImports,
		catalogProducts:  catalogProducts,
		resolverLookups:  resolverLookups,
	}
}

// ObserveSubmission records one order submission. step is empty on success.
func (c *Collectors) ObserveSubmission(outcome, step string, duration time.Duration) {
	if c == nil || c.orderSubmissions == nil {
		return
	}
	c.orderSubmissions.WithLabelValues(outcome, normalizeLabel(step)).Inc()
	c.submitDuration.Observe(duration.Seconds())
}

// IncCartChange counts a cart mutation.
func (c *Collectors) IncCartChange(op string) {
	if c == nil || c.cartChanges == nil {
		return
	}
	c.cartChanges.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveCatalogImport records an import run and the number of products written.
func (c *Collectors) ObserveCatalogImport(outcome string, products int) {
	if c == nil || c.catalogImports == nil {
		return
	}
	c.catalogImports.WithLabelValues(outcome).Inc()
	if products > 0 {
		c.catalogProducts.Add(float64(products))
	}
}

// IncResolverLookup counts a product resolver call.
func (c *Collectors) IncResolverLookup(mode, strategy string) {
	if c == nil || c.resolverLookups == nil {
		return
	}
	c.resolverLookups.WithLabelValues(mode, normalizeLabel(strategy)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "none"
	}
	return v
}
