package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts monitoring cycles by outcome (healthy, alert, failed, skipped)
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_cycles_total",
			Help: "Total number of monitoring cycles",
		},
		[]string{"outcome"},
	)

	// FlaggedNodes is the number of nodes flagged by the last successful cycle
	FlaggedNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodewatch_flagged_nodes",
			Help: "Validators disconnected inside their validation period at the last cycle",
		},
	)

	// ValidatorConnected tracks the connected flag of every returned validator
	ValidatorConnected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodewatch_validator_connected",
			Help: "Validator connected status (1=connected, 0=disconnected)",
		},
		[]string{"node_id"},
	)

	// RPCLatency tracks status fetch latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodewatch_rpc_latency_seconds",
			Help:    "Validator status fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RPCErrorsTotal tracks status fetch errors by type
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_rpc_errors_total",
			Help: "Total number of failed validator status fetches",
		},
		[]string{"error_type"},
	)

	// NotificationsTotal tracks report deliveries
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_notifications_total",
			Help: "Total number of report deliveries by result",
		},
		[]string{"result"},
	)
)
