package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes used as the outcome label.
const (
	OutcomeSuccess           = "success"
	OutcomeValidation        = "validation"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeStockConflict     = "stock_conflict"
	OutcomeError             = "error"
)

// CheckoutMetrics records checkout attempts and the orders they produce.
type CheckoutMetrics struct {
	duration      *prometheus.HistogramVec
	total         *prometheus.CounterVec
	ordersCreated prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Creator orders materialized by successful checkouts.",
	})
	reg.MustRegister(duration, total, ordersCreated)
	return &CheckoutMetrics{
		duration:      duration,
		total:         total,
		ordersCreated: ordersCreated,
	}
}

// Observe records one finished checkout attempt.
func (c *CheckoutMetrics) Observe(outcome string, elapsed time.Duration, orders int) {
	if c == nil || c.total == nil {
		return
	}
	label := normalizeLabel(outcome)
	c.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	c.total.WithLabelValues(label).Inc()
	if orders > 0 {
		c.ordersCreated.Add(float64(orders))
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
