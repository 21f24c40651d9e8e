package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentsInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Payment intents opened per provider",
		},
		[]string{"provider"},
	)

	paymentsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_resolved_total",
			Help: "Payment intents resolved per provider and terminal status",
		},
		[]string{"provider", "status"},
	)

	duplicateCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_duplicate_callbacks_total",
			Help: "Provider callbacks that arrived for an already-terminal intent",
		},
		[]string{"provider"},
	)

	ticketsMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_minted_total",
			Help: "Tickets written to the ledger as valid",
		},
	)

	verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_verifications_total",
			Help: "Verification attempts per outcome",
		},
		[]string{"outcome"},
	)

	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_deliveries_total",
			Help: "Delivery attempts per channel and result",
		},
		[]string{"channel", "result"},
	)
)

func RecordPaymentInitiated(provider string) {
	paymentsInitiated.WithLabelValues(provider).Inc()
}

func RecordPaymentResolved(provider, status string) {
	paymentsResolved.WithLabelValues(provider, status).Inc()
}

func RecordDuplicateCallback(provider string) {
	duplicateCallbacks.WithLabelValues(provider).Inc()
}

func RecordTicketsMinted(count int) {
	ticketsMinted.Add(float64(count))
}

func RecordVerification(outcome string) {
	verifications.WithLabelValues(outcome).Inc()
}

func RecordDelivery(channel, result string) {
	deliveries.WithLabelValues(channel, result).Inc()
}
