package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		entitlementsActivatedTotal,
		entitlementsExpiredTotal,
		remindersSentTotal,
		remindersDedupedTotal,
		sweepErrorsTotal,
	)
}

var (
	entitlementsActivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entitlements_activated_total",
			Help: "Entitlement windows granted by approved payments.",
		},
	)

	entitlementsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entitlements_expired_total",
			Help: "Entitlements transitioned to expired by the sweep.",
		},
	)

	remindersSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "renewal_reminders_sent_total",
			Help: "Renewal reminders delivered to users.",
		},
	)

	remindersDedupedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "renewal_reminders_deduped_total",
			Help: "Reminder sends suppressed by the dedup window.",
		},
	)

	sweepErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_errors_total",
			Help: "Errors caught per sweep iteration, by worker.",
		},
		[]string{"worker"},
	)
)

func IncEntitlementActivated() {
	entitlementsActivatedTotal.Inc()
}

func IncEntitlementsExpired(count int) {
	entitlementsExpiredTotal.Add(float64(count))
}

func IncReminderSent() {
	remindersSentTotal.Inc()
}

func IncReminderDeduped() {
	remindersDedupedTotal.Inc()
}

func IncSweepError(worker string) {
	sweepErrorsTotal.WithLabelValues(worker).Inc()
}
