package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CardsRegistered   prometheus.Counter
	CardsDeactivated  prometheus.Counter
	RegistersRejected *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		CardsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapbank_cards_registered_total",
			Help: "Total number of cards registered",
		}),
		CardsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tapbank_cards_deactivated_total",
			Help: "Total number of cards deactivated",
		}),
		RegistersRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tapbank_card_registers_rejected_total",
			Help: "Card registrations rejected, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncrementRegistered() {
	if m == nil {
		return
	}
	m.CardsRegistered.Inc()
}

func (m *Metrics) IncrementDeactivated() {
	if m == nil {
		return
	}
	m.CardsDeactivated.Inc()
}

func (m *Metrics) IncrementRejected(reason string) {
	if m == nil {
		return
	}
	m.RegistersRejected.WithLabelValues(reason).Inc()
}
