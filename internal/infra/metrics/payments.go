package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		intentsCreatedTotal,
		paymentsTotal,
		paymentsRevenueTotal,
	)
}

var (
	intentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_intents_created_total",
			Help: "Payment intents issued against the gateway.",
		},
	)

	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Reconciled payments by terminal status (approved/rejected).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_revenue_cents_total",
			Help: "Total monetary value of approved payments, in cents.",
		},
	)
)

func IncIntentCreated() {
	intentsCreatedTotal.Inc()
}

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddRevenue(amountCents int64) {
	paymentsRevenueTotal.Add(float64(amountCents))
}
