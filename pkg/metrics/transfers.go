package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransferMetrics records request and resolution activity for stock transfers.
type TransferMetrics struct {
	requested  *prometheus.CounterVec
	resolved   *prometheus.CounterVec
	resolution *prometheus.HistogramVec
}

// NewTransferMetrics registers the transfer metrics on the provided registerer.
func NewTransferMetrics(reg prometheus.Registerer) *TransferMetrics {
	if reg == nil {
		return &TransferMetrics{}
	}
	requested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfers_requested",
		Help: "Transfer requests created.",
	}, []string{"warehouse"})
	resolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfers_resolved",
		Help: "Transfer requests resolved, labeled by outcome.",
	}, []string{"outcome"})
	resolution := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transfer_resolution_seconds",
		Help:    "Time between transfer request and resolution in seconds.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"outcome"})
	reg.MustRegister(requested, resolved, resolution)
	return &TransferMetrics{
		requested:  requested,
		resolved:   resolved,
		resolution: resolution,
	}
}

// IncRequested increments the request counter for the source warehouse.
func (m *TransferMetrics) IncRequested(warehouse string) {
	if m == nil || m.requested == nil {
		return
	}
	m.requested.WithLabelValues(normalizeLabel(warehouse)).Inc()
}

// IncResolved increments the resolution counter for the given outcome.
func (m *TransferMetrics) IncResolved(outcome string) {
	if m == nil || m.resolved == nil {
		return
	}
	m.resolved.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveResolution records how long a transfer sat pending before resolution.
func (m *TransferMetrics) ObserveResolution(outcome string, pending time.Duration) {
	if m == nil || m.resolution == nil {
		return
	}
	m.resolution.WithLabelValues(normalizeLabel(outcome)).Observe(pending.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
