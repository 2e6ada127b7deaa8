package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks the order lifecycle: checkouts, fulfillment moves and settlement.
type OrderMetrics struct {
	ordersCreated   *prometheus.CounterVec
	stockRaces      prometheus.Counter
	transitions     *prometheus.CounterVec
	paymentOutcomes *prometheus.CounterVec
	earningsCents   prometheus.Counter
	payouts         *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op collector.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created by checkout, by payment method.",
		}, []string{"payment_method"}),
		stockRaces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_race_warnings_total",
			Help:      "Post-commit stock decrements that found insufficient stock.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfillment_transitions_total",
			Help:      "Order line fulfillment transitions, by target status.",
		}, []string{"to"}),
		paymentOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_outcomes_total",
			Help:      "Settlement decisions, by resulting status.",
		}, []string{"status"}),
		earningsCents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "earnings_realized_cents_total",
			Help:      "Seller earnings realized, in minor units.",
		}),
		payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_total",
			Help:      "Payout requests and decisions, by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.ordersCreated, m.stockRaces, m.transitions, m.paymentOutcomes, m.earningsCents, m.payouts)
	return m
}

func (m *OrderMetrics) IncOrdersCreated(paymentMethod string, n int) {
	if m == nil || m.ordersCreated == nil || n <= 0 {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Add(float64(n))
}

func (m *OrderMetrics) IncStockRace() {
	if m == nil || m.stockRaces == nil {
		return
	}
	m.stockRaces.Inc()
}

func (m *OrderMetrics) IncTransition(to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) IncPaymentOutcome(status string) {
	if m == nil || m.paymentOutcomes == nil {
		return
	}
	m.paymentOutcomes.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *OrderMetrics) AddEarnings(cents int64) {
	if m == nil || m.earningsCents == nil || cents <= 0 {
		return
	}
	m.earningsCents.Add(float64(cents))
}

func (m *OrderMetrics) IncPayout(status string) {
	if m == nil || m.payouts == nil {
		return
	}
	m.payouts.WithLabelValues(normalizeLabel(status)).Inc()
}
