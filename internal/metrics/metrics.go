// Package metrics exposes Prometheus collectors for harvest runs. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chanharvest"

type Metrics struct {
	harvests            *prometheus.CounterVec
	participants        prometheus.Counter
	participantsSkipped prometheus.Counter
	bioResolutions      *prometheus.CounterVec
	leaveFailures       prometheus.Counter
	harvestDuration     prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		harvests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "harvests_total",
			Help:      "Harvest invocations by outcome.",
		}, []string{"outcome"}),
		participants: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_total",
			Help:      "Participant records exported.",
		}),
		participantsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_skipped_total",
			Help:      "Participants skipped because enrichment failed.",
		}),
		bioResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bio_resolutions_total",
			Help:      "Biographies resolved, by the strategy that answered.",
		}, []string{"strategy"}),
		leaveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leave_failures_total",
			Help:      "Channels that could not be left after an auto-join.",
		}),
		harvestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "harvest_duration_seconds",
			Help:      "Wall time of harvest invocations.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	reg.MustRegister(m.harvests, m.participants, m.participantsSkipped, m.bioResolutions, m.leaveFailures, m.harvestDuration)
	return m
}

func (m *Metrics) ObserveHarvest(outcome string, elapsed time.Duration, exported int) {
	if m == nil {
		return
	}
	m.harvests.WithLabelValues(outcome).Inc()
	m.harvestDuration.Observe(elapsed.Seconds())
	m.participants.Add(float64(exported))
}

func (m *Metrics) ParticipantSkipped() {
	if m == nil {
		return
	}
	m.participantsSkipped.Inc()
}

func (m *Metrics) BioResolved(strategy string) {
	if m == nil {
		return
	}
	m.bioResolutions.WithLabelValues(strategy).Inc()
}

func (m *Metrics) LeaveFailed() {
	if m == nil {
		return
	}
	m.leaveFailures.Inc()
}
