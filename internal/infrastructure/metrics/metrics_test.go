package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_OperationLifecycle(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordOperationStarted("audio")
	m.RecordOperationStarted("video")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsStarted.WithLabelValues("audio")))

	m.RecordOperationFinished("audio", "success", 3.2)
	m.RecordOperationFinished("video", "timeout", 300)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("audio", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("video", "timeout")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationDuration))
}

func TestMetrics_RecordCleanupError(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCleanupError()
	m.RecordCleanupError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CleanupErrors))
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestGetDefaultMetrics_IsSingleton(t *testing.T) {
	assert.Same(t, GetDefaultMetrics(), GetDefaultMetrics())
}
