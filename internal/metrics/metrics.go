// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchRuns counts dispatch runs by outcome (ok, error, locked).
	DispatchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billreminder_dispatch_runs_total",
			Help: "Number of reminder dispatch runs",
		},
		[]string{"status"},
	)

	// NotificationsSent counts provider sends by channel and outcome.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billreminder_notifications_sent_total",
			Help: "Number of notification sends per channel",
		},
		[]string{"channel", "status"},
	)

	// ChannelSkips counts channels skipped during dispatch by reason.
	ChannelSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billreminder_channel_skips_total",
			Help: "Number of channel attempts skipped during dispatch",
		},
		[]string{"channel", "reason"},
	)

	// RemindersGenerated counts reminder ops applied on bill writes.
	RemindersGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billreminder_reminders_generated_total",
			Help: "Number of reminder ops planned on bill writes",
		},
		[]string{"op"},
	)

	// RPCDuration tracks Connect handler latency.
	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billreminder_rpc_duration_seconds",
			Help:    "Duration of RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure", "code"},
	)
)
