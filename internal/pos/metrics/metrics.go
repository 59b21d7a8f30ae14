package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsCreated  prometheus.Counter
	RequestsClaimed  prometheus.Counter
	RequestsFinished *prometheus.CounterVec
	RequestsSwept    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapbank_pos_requests_created_total",
			Help: "Pending point-of-sale requests created",
		}),
		RequestsClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapbank_pos_requests_claimed_total",
			Help: "Pending requests claimed by a card tap",
		}),
		RequestsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tapbank_pos_requests_finished_total",
			Help: "Pending requests finished, by outcome",
		}, []string{"outcome"}),
		RequestsSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapbank_pos_requests_swept_total",
			Help: "Entries removed by the background expiry sweep",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.RequestsCreated.Inc()
}

func (m *Metrics) IncrementClaimed() {
	if m == nil {
		return
	}
	m.RequestsClaimed.Inc()
}

func (m *Metrics) IncrementFinished(outcome string) {
	if m == nil {
		return
	}
	m.RequestsFinished.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RequestsSwept.Add(float64(n))
}
