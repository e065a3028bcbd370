package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClicksIssued counts minted click tokens.
	ClicksIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paisaback_clicks_issued_total",
		Help: "Number of click tokens issued",
	})

	// Redirects counts token resolutions by result (ok, not_found, expired).
	Redirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paisaback_redirects_total",
		Help: "Number of redirect resolutions by result",
	}, []string{"result"})

	// WebhooksReceived counts inbound affiliate webhooks by network and
	// outcome (converted, duplicate, noop, flagged).
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paisaback_webhooks_received_total",
		Help: "Number of affiliate webhooks by network and outcome",
	}, []string{"network", "outcome"})

	// Transitions counts ledger state transitions by target status.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paisaback_transactions_transitioned_total",
		Help: "Number of transaction state transitions by target status",
	}, []string{"status"})

	// WebhookDuration tracks reconciliation latency per network.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paisaback_webhook_duration_seconds",
		Help:    "Duration of webhook reconciliation in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"network"})
)
