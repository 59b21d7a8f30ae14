package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Dispatches     *prometheus.CounterVec
	OverlayHits    prometheus.Counter
	LedgerDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		Dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tapbank_dispatches_total",
			Help: "Card-tap dispatches, by effective operation and outcome",
		}, []string{"operation", "outcome"}),
		OverlayHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapbank_dispatch_overlay_hits_total",
			Help: "Dispatches where a pending point-of-sale intent overrode the device operation",
		}),
		LedgerDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tapbank_ledger_call_duration_seconds",
			Help:    "Latency of outbound ledger calls, by call",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
	}
}

func (m *Metrics) IncrementDispatch(operation, outcome string) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) IncrementOverlay() {
	if m == nil {
		return
	}
	m.OverlayHits.Inc()
}

func (m *Metrics) ObserveLedgerCall(call string, d time.Duration) {
	if m == nil {
		return
	}
	m.LedgerDuration.WithLabelValues(call).Observe(d.Seconds())
}
