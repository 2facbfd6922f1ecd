package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveHarvest(t *testing.T) {
	req := require.New(t)
	m := New(prometheus.NewRegistry())

	m.ObserveHarvest("succeeded", 3*time.Second, 120)
	m.ObserveHarvest("failed", time.Second, 0)
	m.BioResolved("full_profile")
	m.ParticipantSkipped()
	m.LeaveFailed()

	req.InDelta(1, testutil.ToFloat64(m.harvests.WithLabelValues("succeeded")), 0)
	req.InDelta(1, testutil.ToFloat64(m.harvests.WithLabelValues("failed")), 0)
	req.InDelta(120, testutil.ToFloat64(m.participants), 0)
	req.InDelta(1, testutil.ToFloat64(m.bioResolutions.WithLabelValues("full_profile")), 0)
	req.InDelta(1, testutil.ToFloat64(m.participantsSkipped), 0)
	req.InDelta(1, testutil.ToFloat64(m.leaveFailures), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHarvest("succeeded", time.Second, 1)
	m.BioResolved("full_profile")
	m.ParticipantSkipped()
	m.LeaveFailed()
}
