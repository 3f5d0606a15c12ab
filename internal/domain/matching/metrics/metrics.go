package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SignalOutcomes   *prometheus.CounterVec
	ExternalLatency  *prometheus.HistogramVec
	CandidatesScored prometheus.Counter
	MatchesRecorded  prometheus.Counter
	MatchDuplicates  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SignalOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "petreunite_match_signal_outcomes_total",
			Help: "Per-scorer signal outcomes (present/absent/failed)",
		}, []string{"scorer", "outcome"}),
		ExternalLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "petreunite_match_external_call_seconds",
			Help:    "Latency of external collaborator calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
		CandidatesScored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petreunite_match_candidates_scored_total",
			Help: "Total candidates scored by the matching engine",
		}),
		MatchesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petreunite_match_records_created_total",
			Help: "Total match records created",
		}),
		MatchDuplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "petreunite_match_duplicates_absorbed_total",
			Help: "Duplicate match attempts absorbed by the idempotent upsert",
		}),
	}
}

func (m *Metrics) ObserveSignal(scorer, outcome string) {
	m.SignalOutcomes.WithLabelValues(scorer, outcome).Inc()
}

func (m *Metrics) ObserveExternalLatency(call string, d time.Duration) {
	m.ExternalLatency.WithLabelValues(call).Observe(d.Seconds())
}

func (m *Metrics) AddCandidatesScored(n int) {
	m.CandidatesScored.Add(float64(n))
}

func (m *Metrics) IncMatchRecorded() {
	m.MatchesRecorded.Inc()
}

func (m *Metrics) IncDuplicateAbsorbed() {
	m.MatchDuplicates.Inc()
}
