package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Admission outcomes used as metric label values.
const (
	OutcomeAllowed     = "allowed"
	OutcomeRejected    = "rejected"
	OutcomeUnresolved  = "unresolved"
	OutcomeUnavailable = "unavailable"
)

// Metrics counts admission decisions.
type Metrics struct {
	admissions *prometheus.CounterVec
	swept      prometheus.Counter
}

// NewMetrics registers the admission metrics on reg. When tracker is not nil, the
// number of tracked clients is exported as a gauge.
func NewMetrics(reg prometheus.Registerer, tracker Sweeper) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shortener",
			Subsystem: "ratelimit",
			Name:      "admissions_total",
			Help:      "Admission decisions by outcome.",
		}, []string{"outcome"}),
		swept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shortener",
			Subsystem: "ratelimit",
			Name:      "swept_records_total",
			Help:      "Usage records evicted by the sweeper.",
		}),
	}

	if tracker != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "shortener",
			Subsystem: "ratelimit",
			Name:      "tracked_clients",
			Help:      "Clients with a usage record in memory.",
		}, func() float64 { return float64(tracker.Len()) })
	}

	return m
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}

	m.admissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) sweptRecords(n int) {
	if m == nil || n == 0 {
		return
	}

	m.swept.Add(float64(n))
}
