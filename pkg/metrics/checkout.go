package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the checkout flow's progress and its dependency calls.
type CheckoutMetrics struct {
	transitions   *prometheus.CounterVec
	ordersCreated *prometheus.CounterVec
	payments      *prometheus.CounterVec
	priceMismatch prometheus.Counter
	storeLatency  *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_step_transitions_total",
		Help: "Checkout step transitions.",
	}, []string{"from", "to"})
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders created by checkout, by payment method.",
	}, []string{"method"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_payments_total",
		Help: "Payment outcomes, by method and result.",
	}, []string{"method", "outcome"})
	priceMismatch := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_price_mismatch_total",
		Help: "Orders whose backend total differs from the locally computed total.",
	})
	storeLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_api_request_duration_seconds",
		Help:    "Latency of store backend calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_api_errors_total",
		Help: "Failed store backend calls.",
	}, []string{"operation"})
	reg.MustRegister(transitions, ordersCreated, payments, priceMismatch, storeLatency, storeErrors)
	return &CheckoutMetrics{
		transitions:   transitions,
		ordersCreated: ordersCreated,
		payments:      payments,
		priceMismatch: priceMismatch,
		storeLatency:  storeLatency,
		storeErrors:   storeErrors,
	}
}

// IncTransition counts a step change.
func (m *CheckoutMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncOrderCreated counts an order submitted to the backend.
func (m *CheckoutMetrics) IncOrderCreated(method string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPayment counts a payment outcome such as succeeded, failed or declined.
func (m *CheckoutMetrics) IncPayment(method, outcome string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncPriceMismatch counts a backend total disagreeing with the local breakdown.
func (m *CheckoutMetrics) IncPriceMismatch() {
	if m == nil || m.priceMismatch == nil {
		return
	}
	m.priceMismatch.Inc()
}

// ObserveStoreCall records the latency of a store backend call and counts failures.
func (m *CheckoutMetrics) ObserveStoreCall(operation string, duration time.Duration, err error) {
	if m == nil || m.storeLatency == nil {
		return
	}
	op := normalizeLabel(operation)
	m.storeLatency.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
