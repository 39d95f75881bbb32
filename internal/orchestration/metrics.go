package orchestration

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/subnetctl/internal/subnet"
)

// Advance results.
const (
	resultTransitioned = "transitioned"
	resultWaiting      = "waiting"
	resultNoop         = "noop"
	resultConflict     = "conflict"
	resultError        = "error"
	resultInvariant    = "invariant"
)

var (
	advanceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subnetctl",
			Subsystem: "orchestrator",
			Name:      "advance_total",
			Help:      "Total number of Advance calls by starting status and result",
		},
		[]string{"status", "result"},
	)

	advanceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "subnetctl",
			Subsystem: "orchestrator",
			Name:      "advance_duration_seconds",
			Help:      "Duration of Advance calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"status"},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subnetctl",
			Subsystem: "orchestrator",
			Name:      "transitions_total",
			Help:      "Total number of persisted status transitions",
		},
		[]string{"from", "to"},
	)

	subnetStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "subnetctl",
			Subsystem: "subnet",
			Name:      "status",
			Help:      "Current status of the active subnet (1 for the current status, 0 otherwise)",
		},
		[]string{"status"},
	)

	providerAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "subnetctl",
			Subsystem: "provider",
			Name:      "api_calls_total",
			Help:      "Total number of cloud provider API calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	providerAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "subnetctl",
			Subsystem: "provider",
			Name:      "api_latency_seconds",
			Help:      "Latency of cloud provider API calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~25s
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		advanceTotal,
		advanceDuration,
		transitionsTotal,
		subnetStatus,
		providerAPICallsTotal,
		providerAPILatency,
	)
}

func recordAdvanceMetric(status subnet.Status, result string, duration float64) {
	advanceTotal.WithLabelValues(string(status), result).Inc()
	advanceDuration.WithLabelValues(string(status)).Observe(duration)
}

func recordTransitionMetric(from, to subnet.Status) {
	transitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

// recordStatusMetric sets the gauge of status to 1 and every other status to 0.
func recordStatusMetric(status subnet.Status) {
	for _, s := range subnet.AllStatuses {
		if s == status {
			subnetStatus.WithLabelValues(string(s)).Set(1)
		} else {
			subnetStatus.WithLabelValues(string(s)).Set(0)
		}
	}
}

func recordProviderAPICallMetric(operation, result string, latency float64) {
	providerAPICallsTotal.WithLabelValues(operation, result).Inc()
	providerAPILatency.WithLabelValues(operation).Observe(latency)
}

func (o *Orchestrator) recordAdvance(status subnet.Status, result string, duration float64) {
	if o.enableMetrics {
		recordAdvanceMetric(status, result, duration)
	}
}

func (o *Orchestrator) recordTransition(from, to subnet.Status) {
	if o.enableMetrics {
		recordTransitionMetric(from, to)
		recordStatusMetric(to)
	}
}

func (o *Orchestrator) recordStatus(status subnet.Status) {
	if o.enableMetrics {
		recordStatusMetric(status)
	}
}

func (o *Orchestrator) recordProviderAPICall(operation string, err error, latency float64) {
	if !o.enableMetrics {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	recordProviderAPICallMetric(operation, result, latency)
}
