package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart operations by kind.
	CartMutationsTotal *prometheus.CounterVec
	// CheckoutHandoffsTotal counts checkout attempts by fulfilment mode and outcome.
	CheckoutHandoffsTotal *prometheus.CounterVec
	// CatalogFilterResults records how many products a catalog query matched.
	CatalogFilterResults prometheus.Histogram
	// NewsletterSubscriptionsTotal counts newsletter sign-ups by outcome.
	NewsletterSubscriptionsTotal *prometheus.CounterVec
	// NewsletterSubscribers tracks the size of the subscriber list.
	NewsletterSubscribers prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"}))
		CheckoutHandoffsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_handoffs_total",
			Help:      "Count of checkout hand-off attempts by fulfilment mode and result.",
		}, []string{"mode", "result"}))
		CatalogFilterResults = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_filter_results",
			Help:      "Number of products matched by catalog filter queries.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}))
		NewsletterSubscriptionsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "newsletter_subscriptions_total",
			Help:      "Count of newsletter subscription requests by result.",
		}, []string{"result"}))
		NewsletterSubscribers = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "newsletter_subscribers",
			Help:      "Number of distinct newsletter subscribers.",
		}))
	})
}

// CountCartMutation increments the cart mutation counter when metrics are registered.
func CountCartMutation(op string) {
	if CartMutationsTotal != nil {
		CartMutationsTotal.WithLabelValues(op).Inc()
	}
}

// CountCheckout records a checkout outcome when metrics are registered.
func CountCheckout(mode, result string) {
	if CheckoutHandoffsTotal != nil {
		CheckoutHandoffsTotal.WithLabelValues(mode, result).Inc()
	}
}

// ObserveCatalogFilter records the size of a filtered result set.
func ObserveCatalogFilter(matched int) {
	if CatalogFilterResults != nil {
		CatalogFilterResults.Observe(float64(matched))
	}
}

// CountNewsletterSubscription records a newsletter sign-up outcome.
func CountNewsletterSubscription(result string) {
	if NewsletterSubscriptionsTotal != nil {
		NewsletterSubscriptionsTotal.WithLabelValues(result).Inc()
	}
}

// SetNewsletterSubscribers publishes the current subscriber count.
func SetNewsletterSubscribers(n int64) {
	if NewsletterSubscribers != nil {
		NewsletterSubscribers.Set(float64(n))
	}
}
